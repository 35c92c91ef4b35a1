package cmdio

// Transport is a byte-oriented duplex channel to one physical instrument,
// typically a serial port. Implementations provide blocking write and blocking
// read-until-line-terminator with a fixed read timeout.
//
// A Transport is owned exclusively by its Session once the session is created;
// the session closes it exactly once.
type Transport interface {
	// Write sends p to the device. It blocks until the bytes are handed to
	// the underlying driver or the write timeout elapses.
	Write(p []byte) (int, error)

	// ReadLine reads one reply line, blocking until a '\n' is seen or the
	// transport's read timeout elapses with no further data. It returns
	// whatever bytes arrived, terminator included; an empty slice with a nil
	// error means the device sent nothing before the timeout.
	ReadLine() ([]byte, error)

	// Close releases the underlying channel.
	Close() error
}
