package cmdio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name       string
		verb       string
		arg        string
		terminator string
		expected   string
	}{
		{"query CRLF", "TEMP?", "", TermCRLF, "TEMP?\r\n"},
		{"query LF", "POSI?", "", TermLF, "POSI?\n"},
		{"set with integer arg", ":SETT", "25000", TermCRLF, ":SETT 25000\r\n"},
		{"set with float arg", ":DWEL", "2.5", TermLF, ":DWEL 2.5\n"},
		{"action verb", ":PLON", "", TermCRLF, ":PLON\r\n"},
		{"compound verb", ":MOVE ABS", "14.5", TermLF, ":MOVE ABS 14.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []byte(tt.expected), encodeCommand(tt.verb, tt.arg, tt.terminator))
		})
	}
}
