package cmdio

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/andncl/go-qolab/internal/pool"
	"github.com/andncl/go-qolab/logger"
)

// Session is one instrument command channel, instantiated once per physical
// device. It owns its Transport exclusively and drives the half-duplex
// request/response protocol: encode command, write, settle, read, decode.
//
// The protocol permits exactly one command in flight at a time; a Session is
// therefore a single-caller object by contract. Two goroutines sharing one
// session would race on the half-duplex transport with no guard — run each
// session on its own dedicated worker. The last-observed value cache is the
// one exception: Cached may be called concurrently for diagnostics.
//
// Lifecycle: Open on construction (the transport must already be open),
// Closed on Close. Close is idempotent; the transport is closed exactly once.
type Session struct {
	transport Transport
	cfg       *SessionConfig
	logger    logger.Logger

	// cache maps attribute name to the last value observed on a successful
	// get or written by a successful set. Diagnostics only; every get
	// re-queries the hardware.
	cache *xsync.MapOf[string, any]

	closed  atomic.Bool
	metrics SessionMetrics
}

// NewSession creates a Session over an already-open transport.
//
// The session takes exclusive ownership of the transport. A nil cfg gets the
// defaults for the given terminator; construction never performs I/O.
func NewSession(transport Transport, cfg *SessionConfig) (*Session, error) {
	if transport == nil {
		return nil, ErrTransportNil
	}

	if cfg == nil {
		var err error
		cfg, err = NewSessionConfig(TermLF)
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		transport: transport,
		cfg:       cfg,
		logger:    cfg.logger,
		cache:     xsync.NewMapOf[string, any](),
	}, nil
}

// Close closes the session and its transport.
//
// Closing an already-closed session is a no-op and returns nil.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Debug("cmdio: closing session")

	if err := s.transport.Close(); err != nil {
		return commErr("close", err)
	}

	return nil
}

// Metrics returns the session's metrics counters.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// Cached returns the last-observed value for the named attribute, if any.
// The cache is written on every successful get or set and is never consulted
// for correctness; it exists for diagnostics.
func (s *Session) Cached(name string) (any, bool) {
	return s.cache.Load(name)
}

// --- Typed getters ---

// GetInt queries an integer-decoded attribute.
func (s *Session) GetInt(attr *Attribute) (int, error) {
	v, err := s.get(attr)
	if err != nil {
		return 0, err
	}

	i, ok := v.(int)
	if !ok {
		return 0, &ParseError{Raw: attr.Name, Rule: DecodeInt, Err: errors.New("attribute does not decode to integer")}
	}

	return i, nil
}

// GetFloat queries a float-decoded attribute. Integer-quantized readbacks
// are accepted as floats.
func (s *Session) GetFloat(attr *Attribute) (float64, error) {
	v, err := s.get(attr)
	if err != nil {
		return 0, err
	}

	f, ok := v.(float64)
	if !ok {
		return 0, &ParseError{Raw: attr.Name, Rule: DecodeFloat, Err: errors.New("attribute does not decode to float")}
	}

	return f, nil
}

// GetToken queries a token-decoded attribute and returns the trimmed reply.
func (s *Session) GetToken(attr *Attribute) (string, error) {
	v, err := s.get(attr)
	if err != nil {
		return "", err
	}

	t, ok := v.(string)
	if !ok {
		return "", &ParseError{Raw: attr.Name, Rule: DecodeToken, Err: errors.New("attribute does not decode to token")}
	}

	return t, nil
}

// get performs the full query round-trip for an attribute: encode the query
// verb, write, settle, read one line, decode per the attribute's rule, apply
// scaling, and update the cache. The cache is written only after the
// round-trip fully succeeds.
func (s *Session) get(attr *Attribute) (any, error) {
	if attr.QueryVerb == "" {
		return nil, commErr("get "+attr.Name, ErrNotQueryable)
	}

	raw, err := s.queryLine(attr.QueryVerb, 0)
	if err != nil {
		return nil, err
	}

	v, err := decodeReply(raw, attr.Decode)

	// Empty-reply retry policy: re-query up to the configured limit for
	// attributes that opt in, then surface a CommunicationError.
	if errors.Is(err, ErrEmptyReply) && attr.RetryEmpty {
		for retry := 0; retry < s.cfg.emptyRetryLimit && errors.Is(err, ErrEmptyReply); retry++ {
			s.metrics.incEmptyRetryCount()
			s.logger.Debug("cmdio: empty reply, re-querying", "attribute", attr.Name, "retry", retry+1)

			raw, err = s.queryLine(attr.QueryVerb, 0)
			if err != nil {
				return nil, err
			}

			v, err = decodeReply(raw, attr.Decode)
		}
	}

	if err != nil {
		if errors.Is(err, ErrEmptyReply) {
			s.metrics.incCommErrCount()

			return nil, commErr("query "+attr.QueryVerb, err)
		}

		// Parse failures carry the raw line; no cache update.
		return nil, err
	}

	if f, ok := v.(float64); ok {
		v = attr.scale(f)
	}

	s.cache.Store(attr.Name, v)

	return v, nil
}

// --- Setters ---

// Set validates value against the attribute's domain and, if accepted,
// writes the set command and waits the settle delay. The cache is updated
// optimistically after a successful write; no confirmation read is issued.
//
// A rejected value issues zero transport writes and leaves device and cache
// state unchanged.
func (s *Session) Set(attr *Attribute, value float64) error {
	if attr.SetVerb == "" {
		return commErr("set "+attr.Name, ErrNotSettable)
	}

	if err := attr.Validate(value); err != nil {
		s.metrics.incValidationErrCount()

		return err
	}

	if err := s.writeCommand(attr.SetVerb, attr.formatArg(value)); err != nil {
		return err
	}

	if attr.Integer {
		s.cache.Store(attr.Name, int(value))
	} else {
		s.cache.Store(attr.Name, value)
	}

	return nil
}

// SetInt is Set for integer-valued attributes.
func (s *Session) SetInt(attr *Attribute, value int) error {
	return s.Set(attr, float64(value))
}

// --- Actions and raw queries ---

// Exec sends a fire-and-forget action command (e.g. laser on/off, save
// settings): write then settle, with no reply to parse.
func (s *Session) Exec(verb string) error {
	return s.writeCommand(verb, "")
}

// ExecWait sends an action command, waits the settle delay plus extra, then
// reads one line and discards it. Some firmware echoes a status line on
// actions and some does not; the drained line may be empty and that is not
// an error. The coincidence counter uses this to arm a counting cycle and
// hold off until its dwell time has elapsed.
func (s *Session) ExecWait(verb string, extra time.Duration) error {
	_, err := s.queryLine(verb, extra)

	return err
}

// Query sends a raw query verb and returns the trimmed reply line.
func (s *Session) Query(verb string) (string, error) {
	return s.QueryWait(verb, 0)
}

// QueryWait is Query with an extended settle period: the session waits
// extra on top of the configured comm delay before reading the reply. The
// coincidence counter uses this to hold off until a counting cycle of known
// dwell time has finished.
func (s *Session) QueryWait(verb string, extra time.Duration) (string, error) {
	raw, err := s.queryLine(verb, extra)
	if err != nil {
		return "", err
	}

	v, err := decodeReply(raw, DecodeToken)
	if err != nil {
		if errors.Is(err, ErrEmptyReply) {
			s.metrics.incCommErrCount()

			return "", commErr("query "+verb, err)
		}

		return "", err
	}

	return v.(string), nil
}

// --- Protocol primitives ---

// queryLine performs one write/settle/read cycle and returns the raw reply.
func (s *Session) queryLine(verb string, extraSettle time.Duration) ([]byte, error) {
	if err := s.write(verb, "", extraSettle); err != nil {
		return nil, err
	}

	raw, err := s.transport.ReadLine()
	if err != nil {
		s.metrics.incCommErrCount()

		return nil, commErr("read reply to "+verb, err)
	}

	s.metrics.incQueryCount()
	s.logger.Debug("cmdio: query", "verb", verb, "reply", string(raw))

	return raw, nil
}

// writeCommand writes one command line and waits the settle delay.
func (s *Session) writeCommand(verb, arg string) error {
	return s.write(verb, arg, 0)
}

func (s *Session) write(verb, arg string, extraSettle time.Duration) error {
	if s.closed.Load() {
		return commErr("write "+verb, ErrSessionClosed)
	}

	line := encodeCommand(verb, arg, s.cfg.terminator)
	if _, err := s.transport.Write(line); err != nil {
		s.metrics.incCommErrCount()

		return commErr("write "+verb, err)
	}

	s.metrics.incWriteCount()
	s.settle(s.cfg.commDelay + extraSettle)

	return nil
}

// settle blocks for the post-write settle time.
func (s *Session) settle(d time.Duration) {
	pool.Sleep(d)
}
