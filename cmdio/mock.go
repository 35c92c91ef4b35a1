package cmdio

// MockTransport is a scripted in-memory Transport for driver tests.
//
// Replies are consumed in FIFO order, one per ReadLine call; when the queue
// is empty, ReadLine returns an empty line, mimicking a read timeout with no
// data. Every write is recorded verbatim.
type MockTransport struct {
	// Writes records each Write call's bytes.
	Writes [][]byte

	// CloseCount counts Close calls.
	CloseCount int

	// WriteErr, when set, is returned by every Write.
	WriteErr error

	// ReadErr, when set, is returned by every ReadLine.
	ReadErr error

	replies [][]byte
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a MockTransport with the given scripted replies.
// Each reply is returned by one ReadLine call, terminator included.
func NewMockTransport(replies ...string) *MockTransport {
	mt := &MockTransport{}
	for _, r := range replies {
		mt.replies = append(mt.replies, []byte(r))
	}

	return mt
}

// PushReply appends a scripted reply line.
func (mt *MockTransport) PushReply(reply string) {
	mt.replies = append(mt.replies, []byte(reply))
}

// WriteCount returns the number of Write calls recorded.
func (mt *MockTransport) WriteCount() int {
	return len(mt.Writes)
}

// LastWrite returns the most recent write as a string, or "" if none.
func (mt *MockTransport) LastWrite() string {
	if len(mt.Writes) == 0 {
		return ""
	}

	return string(mt.Writes[len(mt.Writes)-1])
}

func (mt *MockTransport) Write(p []byte) (int, error) {
	if mt.WriteErr != nil {
		return 0, mt.WriteErr
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	mt.Writes = append(mt.Writes, buf)

	return len(p), nil
}

func (mt *MockTransport) ReadLine() ([]byte, error) {
	if mt.ReadErr != nil {
		return nil, mt.ReadErr
	}

	if len(mt.replies) == 0 {
		// Timeout with no data.
		return nil, nil
	}

	reply := mt.replies[0]
	mt.replies = mt.replies[1:]

	return reply, nil
}

func (mt *MockTransport) Close() error {
	mt.CloseCount++

	return nil
}
