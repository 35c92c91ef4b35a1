package lcc

import (
	"github.com/stretchr/testify/mock"
)

// MockCommander is a testify mock of the vendor [Commander] interface.
type MockCommander struct {
	mock.Mock
}

var _ Commander = (*MockCommander)(nil)

func NewMockCommander() *MockCommander {
	return &MockCommander{}
}

func (m *MockCommander) List() ([]DeviceInfo, error) {
	args := m.Called()
	return args.Get(0).([]DeviceInfo), args.Error(1)
}

func (m *MockCommander) Open(serialNo string, baudRate, timeoutMs int) (int, error) {
	args := m.Called(serialNo, baudRate, timeoutMs)
	return args.Int(0), args.Error(1)
}

func (m *MockCommander) Close(handle int) error {
	args := m.Called(handle)
	return args.Error(0)
}

func (m *MockCommander) GetVoltage1(handle int) (float64, error) {
	args := m.Called(handle)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCommander) SetVoltage1(handle int, value float64) error {
	args := m.Called(handle, value)
	return args.Error(0)
}

func (m *MockCommander) GetVoltage2(handle int) (float64, error) {
	args := m.Called(handle)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCommander) SetVoltage2(handle int, value float64) error {
	args := m.Called(handle, value)
	return args.Error(0)
}

func (m *MockCommander) GetOutputMode(handle int) (int, error) {
	args := m.Called(handle)
	return args.Int(0), args.Error(1)
}

func (m *MockCommander) SetOutputMode(handle int, mode int) error {
	args := m.Called(handle, mode)
	return args.Error(0)
}

func (m *MockCommander) GetModulationFrequency(handle int) (float64, error) {
	args := m.Called(handle)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCommander) SetModulationFrequency(handle int, hz float64) error {
	args := m.Called(handle, hz)
	return args.Error(0)
}

func (m *MockCommander) GetOutputEnable(handle int) (bool, error) {
	args := m.Called(handle)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommander) SetOutputEnable(handle int, enable bool) error {
	args := m.Called(handle, enable)
	return args.Error(0)
}
