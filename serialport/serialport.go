// Package serialport provides the concrete [cmdio.Transport] over a physical
// serial port, using go.bug.st/serial.
//
// All instruments in the lab kit use 8 data bits, no parity and one stop bit;
// only the baud rate differs per instrument model. Reads and writes use a
// fixed 1 second timeout, matching the firmware conventions the command
// protocol was designed around: a read that times out with no data yields an
// empty line, which the session layer turns into a retry or a
// CommunicationError per attribute policy.
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/andncl/go-qolab/cmdio"
)

// ReadTimeout is the fixed blocking-read timeout for all instruments.
const ReadTimeout = 1 * time.Second

// Config holds the per-instrument serial framing. Framing is documented per
// instrument model, not negotiated.
type Config struct {
	// BaudRate is the per-instrument line speed, e.g. 115200 for the
	// QES 2.4 bi-photon source or 19200 for the CC1 coincidence counter.
	BaudRate int
}

// Port is a serial-port transport. It implements [cmdio.Transport].
type Port struct {
	port serial.Port
}

var _ cmdio.Transport = (*Port)(nil)

// Open opens the named serial port (e.g. "/dev/ttyUSB0" or "COM3") with
// 8N1 framing at the configured baud rate.
func Open(name string, cfg Config) (*Port, error) {
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("serialport: invalid baud rate %d", cfg.BaudRate)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}

	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		_ = port.Close()

		return nil, fmt.Errorf("serialport: set read timeout on %s: %w", name, err)
	}

	return &Port{port: port}, nil
}

// Write sends b to the device.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// ReadLine reads bytes until a '\n' is seen or the read timeout elapses with
// no further data. It returns whatever arrived, terminator included; an empty
// slice with a nil error means the device sent nothing before the timeout.
func (p *Port) ReadLine() ([]byte, error) {
	return readLine(p.port)
}

// byteReader is the read side of a serial port: a Read that returns n == 0
// with a nil error when the read timeout elapses.
type byteReader interface {
	Read(p []byte) (int, error)
}

func readLine(r byteReader) ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)

	for {
		n, err := r.Read(buf)
		if err != nil {
			return line, err
		}

		if n == 0 {
			// Read timeout with no data; return what we have.
			return line, nil
		}

		line = append(line, buf[0])
		if buf[0] == '\n' {
			return line, nil
		}
	}
}

// Close closes the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
