package cmdio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andncl/go-qolab/logger"
)

func TestNewSessionConfig_Defaults(t *testing.T) {
	cfg, err := NewSessionConfig(TermCRLF)
	require.NoError(t, err)

	assert.Equal(t, TermCRLF, cfg.Terminator())
	assert.Equal(t, DefaultCommDelay, cfg.CommDelay())
	assert.Equal(t, DefaultEmptyRetryLimit, cfg.EmptyRetryLimit())
	assert.NotNil(t, cfg.GetLogger())
}

func TestNewSessionConfig_WithOptions(t *testing.T) {
	mockLogger := logger.NewMockLogger()
	cfg, err := NewSessionConfig(TermLF,
		WithCommDelay(500*time.Millisecond),
		WithEmptyRetryLimit(3),
		WithLogger(mockLogger),
	)
	require.NoError(t, err)

	assert.Equal(t, TermLF, cfg.Terminator())
	assert.Equal(t, 500*time.Millisecond, cfg.CommDelay())
	assert.Equal(t, 3, cfg.EmptyRetryLimit())
	assert.Same(t, mockLogger, cfg.GetLogger())
}

func TestNewSessionConfig_Invalid(t *testing.T) {
	_, err := NewSessionConfig("\r")
	assert.Error(t, err)

	_, err = NewSessionConfig(TermLF, WithCommDelay(-time.Second))
	assert.Error(t, err)

	_, err = NewSessionConfig(TermLF, WithCommDelay(MaxCommDelay+time.Second))
	assert.Error(t, err)

	_, err = NewSessionConfig(TermLF, WithEmptyRetryLimit(-1))
	assert.Error(t, err)

	_, err = NewSessionConfig(TermLF, WithEmptyRetryLimit(MaxEmptyRetryLimit+1))
	assert.Error(t, err)

	_, err = NewSessionConfig(TermLF, WithLogger(nil))
	assert.Error(t, err)
}
