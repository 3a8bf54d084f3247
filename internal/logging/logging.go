// Package logging builds the console logger shared by every package.
package logging

import (
	"io"
	"os"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionKey is the field that tags every line of one run.
const SessionKey = "session"

// New returns a logger writing to stderr at the given level.
// An unknown level falls back to info.
func New(level string) *logrus.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&formatter.Formatter{
		TimestampFormat: "15:04:05.000",
		HideKeys:        false,
		NoColors:        !isTerminal(w),
		FieldsOrder:     []string{SessionKey, "detector"},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// WithSession returns an entry carrying a fresh session id.
func WithSession(logger *logrus.Logger) *logrus.Entry {
	id, err := uuid.NewRandom()
	if err != nil {
		return logger.WithField(SessionKey, "unknown")
	}
	return logger.WithField(SessionKey, id.String()[:8])
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
