// Package logging provides structured logging for the edusync engine.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields is the context attached to a log entry.
type Fields = map[string]interface{}

var (
	global *logrus.Logger
	once   sync.Once
	mu     sync.RWMutex
)

// Init initializes the global logger. Level is one of debug, info, warn,
// error; unknown levels fall back to info.
func Init(out io.Writer, level string) {
	once.Do(func() {
		l := logrus.New()
		l.SetOutput(out)
		l.SetFormatter(&logrus.JSONFormatter{})
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		l.SetLevel(lvl)

		mu.Lock()
		global = l
		mu.Unlock()
	})
}

// Get returns the global logger instance.
func Get() *logrus.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l == nil {
		Init(os.Stdout, "info")
		mu.RLock()
		l = global
		mu.RUnlock()
	}
	return l
}

// Debug logs a debug message.
func Debug(message string, fields Fields) {
	Get().WithFields(logrus.Fields(fields)).Debug(message)
}

// Info logs an info message.
func Info(message string, fields Fields) {
	Get().WithFields(logrus.Fields(fields)).Info(message)
}

// Warn logs a warning message.
func Warn(message string, fields Fields) {
	Get().WithFields(logrus.Fields(fields)).Warn(message)
}

// Error logs an error message with the underlying error attached.
func Error(message string, err error, fields Fields) {
	entry := Get().WithFields(logrus.Fields(fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}
