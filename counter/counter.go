// Package counter drives the Qubitekk CC1 coincidence counter of the
// quantum-optics lab kit: single-photon count rates on two channels and the
// coincidences between them, integrated over a configurable dwell time.
//
// The CC1 speaks the lab kit's line protocol at 19200 baud with a bare "\n"
// terminator.
package counter

import (
	"time"

	"github.com/andncl/go-qolab/cmdio"
	"github.com/andncl/go-qolab/serialport"
)

// BaudRate is the CC1 serial line speed.
const BaudRate = 19200

var (
	// The dwell readback carries a unit suffix ("1000 ms"); the value is
	// exposed in seconds.
	attrDwellTime = cmdio.Attribute{
		Name:      "dwell time",
		QueryVerb: "DWEL?",
		SetVerb:   ":DWEL",
		Decode:    cmdio.DecodeUnitFloat,
		Domain:    cmdio.Range{Min: 0.1, Max: 30},
		Scale:     1e-3,
	}

	attrCoincidenceWindow = cmdio.Attribute{
		Name:      "coincidence window",
		QueryVerb: "WIND?",
		SetVerb:   ":WIND",
		Decode:    cmdio.DecodeInt,
		Domain:    cmdio.Range{Min: 1, Max: 8},
		Integer:   true,
	}

	attrChannelDelay = cmdio.Attribute{
		Name:      "channel delay",
		QueryVerb: "DELA?",
		SetVerb:   ":DELA",
		Decode:    cmdio.DecodeInt,
		Domain:    cmdio.Enum{0, 2, 4, 6, 8, 10, 12, 14},
		Integer:   true,
	}
)

// Counter is a CC1 coincidence counter session.
//
// Like every instrument session, a Counter supports exactly one logical
// caller at a time; see [cmdio.Session].
type Counter struct {
	session *cmdio.Session

	// dwell is the last dwell time set or read, used to size the arm wait
	// in MeasureChannels. Negative until known.
	dwell time.Duration
}

// New creates a Counter over an already-open transport. The counter takes
// ownership of the transport.
func New(transport cmdio.Transport, opts ...cmdio.SessionOption) (*Counter, error) {
	cfg, err := cmdio.NewSessionConfig(cmdio.TermLF, opts...)
	if err != nil {
		return nil, err
	}

	session, err := cmdio.NewSession(transport, cfg)
	if err != nil {
		return nil, err
	}

	return &Counter{session: session, dwell: -1}, nil
}

// Open opens the counter on the named serial port.
func Open(port string, opts ...cmdio.SessionOption) (*Counter, error) {
	transport, err := serialport.Open(port, serialport.Config{BaudRate: BaudRate})
	if err != nil {
		return nil, err
	}

	c, err := New(transport, opts...)
	if err != nil {
		_ = transport.Close()

		return nil, err
	}

	return c, nil
}

// Close closes the session and the underlying transport. Idempotent.
func (c *Counter) Close() error {
	return c.session.Close()
}

// Session returns the underlying command session, for diagnostics such as
// cached values and metrics.
func (c *Counter) Session() *cmdio.Session {
	return c.session
}

// DwellTime returns the integration time in seconds. The hardware reports
// milliseconds with a unit suffix; the driver strips and rescales it.
func (c *Counter) DwellTime() (float64, error) {
	seconds, err := c.session.GetFloat(&attrDwellTime)
	if err != nil {
		return 0, err
	}

	c.dwell = time.Duration(seconds * float64(time.Second))

	return seconds, nil
}

// SetDwellTime sets the integration time in seconds (0.1–30 s).
func (c *Counter) SetDwellTime(seconds float64) error {
	if err := c.session.Set(&attrDwellTime, seconds); err != nil {
		return err
	}

	c.dwell = time.Duration(seconds * float64(time.Second))

	return nil
}

// CoincidenceWindow returns the coincidence window in ns.
func (c *Counter) CoincidenceWindow() (int, error) {
	return c.session.GetInt(&attrCoincidenceWindow)
}

// SetCoincidenceWindow sets the coincidence window (1–8 ns).
func (c *Counter) SetCoincidenceWindow(ns int) error {
	return c.session.SetInt(&attrCoincidenceWindow, ns)
}

// ChannelDelay returns the channel 1 delay in ns.
func (c *Counter) ChannelDelay() (int, error) {
	return c.session.GetInt(&attrChannelDelay)
}

// SetChannelDelay sets the channel 1 delay; must be an even number in [0, 14] ns.
func (c *Counter) SetChannelDelay(ns int) error {
	return c.session.SetInt(&attrChannelDelay, ns)
}

// MeasureChannels runs one counting cycle and returns the counts of channel 1,
// channel 2 and the coincidences between them.
//
// The measurement takes four sequential round-trips: arm the counters with
// :COUN:ON, hold off for at least the dwell time plus the settle delay while
// the cycle integrates, then query COUN:C1?, COUN:C2? and COUN:CO?. If the
// dwell time has not been set or read in this session yet, it is queried
// first so the arm wait is sized correctly.
func (c *Counter) MeasureChannels() (ch1, ch2, coincidences int, err error) {
	if c.dwell < 0 {
		if _, err = c.DwellTime(); err != nil {
			return 0, 0, 0, err
		}
	}

	// Arm and discard whatever the firmware echoes; some revisions send a
	// status line, some send nothing before the read timeout.
	if err = c.session.ExecWait(":COUN:ON", c.dwell); err != nil {
		return 0, 0, 0, err
	}

	if ch1, err = c.queryCount("COUN:C1?"); err != nil {
		return 0, 0, 0, err
	}

	if ch2, err = c.queryCount("COUN:C2?"); err != nil {
		return 0, 0, 0, err
	}

	if coincidences, err = c.queryCount("COUN:CO?"); err != nil {
		return 0, 0, 0, err
	}

	return ch1, ch2, coincidences, nil
}

func (c *Counter) queryCount(verb string) (int, error) {
	attr := cmdio.Attribute{Name: verb, QueryVerb: verb, Decode: cmdio.DecodeInt}

	return c.session.GetInt(&attr)
}
