package cmdio

import (
	"errors"
	"fmt"
	"time"

	"github.com/andncl/go-qolab/logger"
)

// Default configuration values.
const (
	// DefaultCommDelay is the post-write settle delay. Most instruments in
	// the kit work with no settle time; the bi-photon source controllers
	// override this per profile.
	DefaultCommDelay = 0 * time.Second

	// DefaultEmptyRetryLimit is the number of automatic re-queries applied
	// to attributes with the RetryEmpty policy when a reply line is empty.
	DefaultEmptyRetryLimit = 1
)

// Configuration limits.
const (
	// MaxCommDelay bounds the settle delay. Delays beyond this point exceed
	// any firmware processing latency in the kit by orders of magnitude.
	MaxCommDelay = 30 * time.Second

	// MaxEmptyRetryLimit bounds the empty-reply retry count.
	MaxEmptyRetryLimit = 5
)

// SessionConfig holds all configuration for an instrument command session.
type SessionConfig struct {
	// terminator is the line terminator appended to every command,
	// "\r\n" or "\n" depending on the instrument firmware.
	terminator string

	// commDelay is the fixed post-write settle time, constant for the
	// session lifetime.
	commDelay time.Duration

	// emptyRetryLimit caps automatic re-queries on empty replies for
	// attributes with the RetryEmpty policy.
	emptyRetryLimit int

	logger logger.Logger
}

// NewSessionConfig creates a session configuration with the given line
// terminator. opts are functional options applied in order; see With*
// functions.
func NewSessionConfig(terminator string, opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		commDelay:       DefaultCommDelay,
		emptyRetryLimit: DefaultEmptyRetryLimit,
		logger:          logger.GetLogger(),
	}

	if err := cfg.setTerminator(terminator); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *SessionConfig) setTerminator(term string) error {
	if term != TermCRLF && term != TermLF {
		return fmt.Errorf("cmdio: invalid line terminator %q", term)
	}
	cfg.terminator = term

	return nil
}

// --- Getters ---

// Terminator returns the configured line terminator.
func (cfg *SessionConfig) Terminator() string { return cfg.terminator }

// CommDelay returns the fixed post-write settle delay.
func (cfg *SessionConfig) CommDelay() time.Duration { return cfg.commDelay }

// EmptyRetryLimit returns the maximum number of automatic re-queries on
// empty replies for RetryEmpty attributes.
func (cfg *SessionConfig) EmptyRetryLimit() int { return cfg.emptyRetryLimit }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// --- SessionOption ---

// SessionOption is a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithCommDelay sets the fixed post-write settle delay.
// Must be in [0, MaxCommDelay].
func WithCommDelay(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d < 0 || d > MaxCommDelay {
			return fmt.Errorf("cmdio: comm delay %v out of range [0, %v]", d, MaxCommDelay)
		}
		cfg.commDelay = d

		return nil
	})
}

// WithEmptyRetryLimit sets the maximum number of automatic re-queries on
// empty replies for attributes with the RetryEmpty policy. Zero disables
// the retry; every empty reply then surfaces a CommunicationError.
func WithEmptyRetryLimit(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 0 || n > MaxEmptyRetryLimit {
			return fmt.Errorf("cmdio: empty retry limit %d out of range [0, %d]", n, MaxEmptyRetryLimit)
		}
		cfg.emptyRetryLimit = n

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("cmdio: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
