// Package motor drives the motorized translation stage of the quantum-optics
// lab kit.
//
// The stage speaks the lab kit's line protocol at 9600 baud with a bare "\n"
// terminator. The position readback occasionally yields an empty line within
// the read timeout; the driver re-queries once before reporting a
// communication error.
package motor

import (
	"time"

	"github.com/andncl/go-qolab/cmdio"
	"github.com/andncl/go-qolab/serialport"
)

// BaudRate is the stage serial line speed.
const BaudRate = 9600

// startupDelay is the pause between opening the port and the first command;
// the stage controller needs a moment after the port toggles DTR.
const startupDelay = 100 * time.Millisecond

var attrPosition = cmdio.Attribute{
	Name:       "position",
	QueryVerb:  "POSI?",
	SetVerb:    ":MOVE ABS",
	Decode:     cmdio.DecodeFloat,
	Domain:     cmdio.Range{Min: 1, Max: 29},
	RetryEmpty: true,
}

// Motor is a translation stage session.
//
// Like every instrument session, a Motor supports exactly one logical caller
// at a time; see [cmdio.Session].
type Motor struct {
	session *cmdio.Session
}

// New creates a Motor over an already-open transport and switches the
// controller's indicator LED off, as the lab kit expects. On success the
// motor owns the transport; on error the transport is left open for the
// caller to close.
func New(transport cmdio.Transport, opts ...cmdio.SessionOption) (*Motor, error) {
	cfg, err := cmdio.NewSessionConfig(cmdio.TermLF, opts...)
	if err != nil {
		return nil, err
	}

	session, err := cmdio.NewSession(transport, cfg)
	if err != nil {
		return nil, err
	}

	time.Sleep(startupDelay)
	if err := session.Exec(":LEDO"); err != nil {
		return nil, err
	}

	return &Motor{session: session}, nil
}

// Open opens the stage on the named serial port.
func Open(port string, opts ...cmdio.SessionOption) (*Motor, error) {
	transport, err := serialport.Open(port, serialport.Config{BaudRate: BaudRate})
	if err != nil {
		return nil, err
	}

	m, err := New(transport, opts...)
	if err != nil {
		_ = transport.Close()

		return nil, err
	}

	return m, nil
}

// Close closes the session and the underlying transport. Idempotent.
func (m *Motor) Close() error {
	return m.session.Close()
}

// Session returns the underlying command session, for diagnostics such as
// cached values and metrics.
func (m *Motor) Session() *cmdio.Session {
	return m.session
}

// Position returns the stage position in mm. An empty readback is re-queried
// once; a repeated empty reply surfaces as a CommunicationError.
func (m *Motor) Position() (float64, error) {
	return m.session.GetFloat(&attrPosition)
}

// MoveTo moves the stage to an absolute position (1–29 mm). The command
// returns once the move is issued; the controller positions asynchronously.
func (m *Motor) MoveTo(mm float64) error {
	return m.session.Set(&attrPosition, mm)
}
