package lcc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andncl/go-qolab/cmdio"
)

func listing() []DeviceInfo {
	return []DeviceInfo{
		{SerialNo: "M00123456", Port: "COM3"},
		{SerialNo: "M00654321", Port: "COM7"},
	}
}

func openTestDevice(t *testing.T) (*Device, *MockCommander) {
	t.Helper()

	cmd := NewMockCommander()
	cmd.On("List").Return(listing(), nil)
	cmd.On("Open", "M00654321", DefaultBaudRate, DefaultTimeoutMs).Return(7, nil)

	dev, err := Open(cmd, "COM7")
	require.NoError(t, err)

	return dev, cmd
}

func TestOpen(t *testing.T) {
	t.Run("resolves port case-insensitively", func(t *testing.T) {
		cmd := NewMockCommander()
		cmd.On("List").Return(listing(), nil)
		cmd.On("Open", "M00123456", DefaultBaudRate, DefaultTimeoutMs).Return(3, nil)

		dev, err := Open(cmd, "com3")
		require.NoError(t, err)
		assert.Equal(t, "M00123456", dev.SerialNo())
		cmd.AssertExpectations(t)
	})

	t.Run("no device on port", func(t *testing.T) {
		cmd := NewMockCommander()
		cmd.On("List").Return(listing(), nil)

		_, err := Open(cmd, "COM9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COM9")
		cmd.AssertNotCalled(t, "Open")
	})

	t.Run("listing fails", func(t *testing.T) {
		listErr := errors.New("dll not loaded")
		cmd := NewMockCommander()
		cmd.On("List").Return([]DeviceInfo(nil), listErr)

		_, err := Open(cmd, "COM3")
		var commErr *cmdio.CommunicationError
		require.ErrorAs(t, err, &commErr)
		assert.ErrorIs(t, err, listErr)
	})

	t.Run("open fails", func(t *testing.T) {
		openErr := errors.New("device busy")
		cmd := NewMockCommander()
		cmd.On("List").Return(listing(), nil)
		cmd.On("Open", "M00123456", DefaultBaudRate, DefaultTimeoutMs).Return(0, openErr)

		_, err := Open(cmd, "COM3")
		assert.ErrorIs(t, err, openErr)
	})

	t.Run("options override vendor settings", func(t *testing.T) {
		cmd := NewMockCommander()
		cmd.On("List").Return(listing(), nil)
		cmd.On("Open", "M00123456", 9600, 500).Return(3, nil)

		_, err := Open(cmd, "COM3", WithBaudRate(9600), WithTimeout(500))
		require.NoError(t, err)
		cmd.AssertExpectations(t)
	})
}

func TestVoltages(t *testing.T) {
	t.Run("get stores cache", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("GetVoltage1", 7).Return(12.5, nil)

		v, err := dev.Voltage1()
		require.NoError(t, err)
		assert.Equal(t, 12.5, v)

		cached, ok := dev.Cached("voltage1")
		require.True(t, ok)
		assert.Equal(t, 12.5, cached)
	})

	t.Run("set in domain", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("SetVoltage2", 7, 20.0).Return(nil)

		require.NoError(t, dev.SetVoltage2(20.0))

		cached, ok := dev.Cached("voltage2")
		require.True(t, ok)
		assert.Equal(t, 20.0, cached)
		cmd.AssertExpectations(t)
	})

	t.Run("set out of domain issues no vendor call", func(t *testing.T) {
		dev, cmd := openTestDevice(t)

		err := dev.SetVoltage1(26)
		var valErr *cmdio.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "voltage1", valErr.Attribute)

		cmd.AssertNotCalled(t, "SetVoltage1")
		_, ok := dev.Cached("voltage1")
		assert.False(t, ok)
	})

	t.Run("vendor failure wrapped, cache untouched", func(t *testing.T) {
		vendorErr := errors.New("write failed")
		dev, cmd := openTestDevice(t)
		cmd.On("SetVoltage1", 7, 5.0).Return(vendorErr)

		err := dev.SetVoltage1(5.0)
		var commErr *cmdio.CommunicationError
		require.ErrorAs(t, err, &commErr)
		assert.ErrorIs(t, err, vendorErr)

		_, ok := dev.Cached("voltage1")
		assert.False(t, ok)
	})
}

func TestModulationFrequency(t *testing.T) {
	t.Run("set in domain", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("SetModulationFrequency", 7, 60.0).Return(nil)

		require.NoError(t, dev.SetModulationFrequency(60.0))
		cmd.AssertExpectations(t)
	})

	t.Run("below minimum rejected", func(t *testing.T) {
		dev, cmd := openTestDevice(t)

		err := dev.SetModulationFrequency(4)
		var valErr *cmdio.ValidationError
		require.ErrorAs(t, err, &valErr)
		cmd.AssertNotCalled(t, "SetModulationFrequency")
	})

	t.Run("get", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("GetModulationFrequency", 7).Return(100.0, nil)

		hz, err := dev.ModulationFrequency()
		require.NoError(t, err)
		assert.Equal(t, 100.0, hz)
	})
}

func TestMode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("SetOutputMode", 7, 1).Return(nil)
		cmd.On("GetOutputMode", 7).Return(1, nil)

		require.NoError(t, dev.SetMode(ModeVoltage1))

		mode, err := dev.Mode()
		require.NoError(t, err)
		assert.Equal(t, ModeVoltage1, mode)

		cached, ok := dev.Cached("output mode")
		require.True(t, ok)
		assert.Equal(t, ModeVoltage1, cached)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		dev, cmd := openTestDevice(t)

		err := dev.SetMode(OutputMode(3))
		var valErr *cmdio.ValidationError
		require.ErrorAs(t, err, &valErr)
		cmd.AssertNotCalled(t, "SetOutputMode")
	})

	t.Run("string names", func(t *testing.T) {
		assert.Equal(t, "modulation", ModeModulation.String())
		assert.Equal(t, "voltage1", ModeVoltage1.String())
		assert.Equal(t, "voltage2", ModeVoltage2.String())
		assert.Equal(t, "unknown(5)", OutputMode(5).String())
	})
}

func TestOutputEnable(t *testing.T) {
	dev, cmd := openTestDevice(t)
	cmd.On("SetOutputEnable", 7, true).Return(nil)
	cmd.On("GetOutputEnable", 7).Return(true, nil)

	require.NoError(t, dev.SetOutputEnabled(true))

	enabled, err := dev.OutputEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	cached, ok := dev.Cached("output enable")
	require.True(t, ok)
	assert.Equal(t, true, cached)
}

func TestClose(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("Close", 7).Return(nil)

		require.NoError(t, dev.Close())
		require.NoError(t, dev.Close())

		cmd.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("operations rejected after close", func(t *testing.T) {
		dev, cmd := openTestDevice(t)
		cmd.On("Close", 7).Return(nil)
		require.NoError(t, dev.Close())

		_, err := dev.Voltage1()
		assert.ErrorIs(t, err, cmdio.ErrSessionClosed)

		err = dev.SetVoltage1(5)
		assert.ErrorIs(t, err, cmdio.ErrSessionClosed)

		cmd.AssertNotCalled(t, "GetVoltage1")
		cmd.AssertNotCalled(t, "SetVoltage1")
	})

	t.Run("vendor close failure wrapped", func(t *testing.T) {
		closeErr := errors.New("handle invalid")
		dev, cmd := openTestDevice(t)
		cmd.On("Close", 7).Return(closeErr)

		err := dev.Close()
		assert.ErrorIs(t, err, closeErr)
	})
}
