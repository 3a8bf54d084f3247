package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Level(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewWithWriter(&bytes.Buffer{}, tt.level)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestWithSession(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info")

	entry := WithSession(logger)
	id, ok := entry.Data[SessionKey].(string)
	require.True(t, ok)
	assert.Len(t, id, 8)

	entry.Warn("Ignoring empty frame")
	out := buf.String()
	assert.Contains(t, out, "Ignoring empty frame")
	assert.Contains(t, out, id)
	assert.NotContains(t, out, "\x1b[", "buffers get no colors")
}

func TestWithSession_Unique(t *testing.T) {
	logger := Discard()
	a := WithSession(logger).Data[SessionKey]
	b := WithSession(logger).Data[SessionKey]
	assert.NotEqual(t, a, b)
}
