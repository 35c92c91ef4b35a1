package counter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andncl/go-qolab/cmdio"
)

func newTestCounter(t *testing.T, mt *cmdio.MockTransport, opts ...cmdio.SessionOption) *Counter {
	t.Helper()

	c, err := New(mt, opts...)
	require.NoError(t, err)

	return c
}

func TestDwellTime_UnitSuffixStripped(t *testing.T) {
	mt := cmdio.NewMockTransport("1000 ms\n")
	c := newTestCounter(t, mt)

	seconds, err := c.DwellTime()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, seconds, 1e-9)
	assert.Equal(t, "DWEL?\n", mt.LastWrite())
}

func TestSetDwellTime(t *testing.T) {
	mt := cmdio.NewMockTransport()
	c := newTestCounter(t, mt)

	require.NoError(t, c.SetDwellTime(2.5))
	assert.Equal(t, ":DWEL 2.5\n", mt.LastWrite())

	// Whole-second dwell keeps its decimal point on the wire.
	require.NoError(t, c.SetDwellTime(2.0))
	assert.Equal(t, ":DWEL 2.0\n", mt.LastWrite())

	for _, invalid := range []float64{0.05, 31} {
		err := c.SetDwellTime(invalid)
		validationErr := &cmdio.ValidationError{}
		require.ErrorAs(t, err, &validationErr, "value %v", invalid)
	}

	// Only the valid sets reached the transport.
	assert.Equal(t, 2, mt.WriteCount())
}

func TestCoincidenceWindow(t *testing.T) {
	mt := cmdio.NewMockTransport("4\n")
	c := newTestCounter(t, mt)

	ns, err := c.CoincidenceWindow()
	require.NoError(t, err)
	assert.Equal(t, 4, ns)
	assert.Equal(t, "WIND?\n", mt.LastWrite())

	require.NoError(t, c.SetCoincidenceWindow(8))
	assert.Equal(t, ":WIND 8\n", mt.LastWrite())

	validationErr := &cmdio.ValidationError{}
	require.ErrorAs(t, c.SetCoincidenceWindow(0), &validationErr)
	require.ErrorAs(t, c.SetCoincidenceWindow(9), &validationErr)
}

func TestChannelDelay(t *testing.T) {
	mt := cmdio.NewMockTransport("6\n")
	c := newTestCounter(t, mt)

	ns, err := c.ChannelDelay()
	require.NoError(t, err)
	assert.Equal(t, 6, ns)

	require.NoError(t, c.SetChannelDelay(14))
	assert.Equal(t, ":DELA 14\n", mt.LastWrite())

	// Odd values are not on the delay grid.
	validationErr := &cmdio.ValidationError{}
	require.ErrorAs(t, c.SetChannelDelay(7), &validationErr)
	require.ErrorAs(t, c.SetChannelDelay(16), &validationErr)
}

func TestMeasureChannels(t *testing.T) {
	commDelay := 50 * time.Millisecond
	mt := cmdio.NewMockTransport()
	c := newTestCounter(t, mt, cmdio.WithCommDelay(commDelay))

	require.NoError(t, c.SetDwellTime(0.2))

	mt.PushReply("1\n")  // arm acknowledgement
	mt.PushReply("10\n") // C1
	mt.PushReply("20\n") // C2
	mt.PushReply("3\n")  // coincidences

	start := time.Now()
	ch1, ch2, co, err := c.MeasureChannels()
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 10, ch1)
	assert.Equal(t, 20, ch2)
	assert.Equal(t, 3, co)

	// Arm phase holds off at least dwell + comm delay before the first read.
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond+commDelay)

	// One set plus four measurement round-trips.
	require.Equal(t, 5, mt.WriteCount())
	assert.Equal(t, []byte(":COUN:ON\n"), mt.Writes[1])
	assert.Equal(t, []byte("COUN:C1?\n"), mt.Writes[2])
	assert.Equal(t, []byte("COUN:C2?\n"), mt.Writes[3])
	assert.Equal(t, []byte("COUN:CO?\n"), mt.Writes[4])
}

func TestMeasureChannels_ArmWithoutEcho(t *testing.T) {
	mt := cmdio.NewMockTransport()
	c := newTestCounter(t, mt)

	require.NoError(t, c.SetDwellTime(0.1))

	// Firmware that stays silent on arm: the read times out empty, then the
	// count queries answer normally.
	mt.PushReply("")
	mt.PushReply("10\n")
	mt.PushReply("20\n")
	mt.PushReply("3\n")

	ch1, ch2, co, err := c.MeasureChannels()
	require.NoError(t, err)
	assert.Equal(t, 10, ch1)
	assert.Equal(t, 20, ch2)
	assert.Equal(t, 3, co)
}

func TestMeasureChannels_QueriesUnknownDwell(t *testing.T) {
	mt := cmdio.NewMockTransport(
		"100 ms\n", // DWEL? readback sizes the arm wait
		"0\n",      // arm acknowledgement
		"7\n", "9\n", "2\n",
	)
	c := newTestCounter(t, mt)

	ch1, ch2, co, err := c.MeasureChannels()
	require.NoError(t, err)
	assert.Equal(t, 7, ch1)
	assert.Equal(t, 9, ch2)
	assert.Equal(t, 2, co)

	require.Equal(t, 5, mt.WriteCount())
	assert.Equal(t, []byte("DWEL?\n"), mt.Writes[0])
}

func TestClose_Idempotent(t *testing.T) {
	mt := cmdio.NewMockTransport()
	c := newTestCounter(t, mt)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, mt.CloseCount)
}
