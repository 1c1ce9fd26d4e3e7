// Package testutil provides shared test doubles for molnotation packages.
package testutil

import (
	"sync"

	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry.  Children
// created with With or Named share the parent's record.
type MockLogger struct {
	rec    *record
	name   string
	fields []logging.Field
}

type record struct {
	mu      sync.Mutex
	entries []LogMessage
}

// LogMessage is one captured entry.  Fields include those added with With.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{rec: &record{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.entries = append(m.rec.entries, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }

func (m *MockLogger) Info(msg string, fields ...logging.Field) { m.log("info", msg, fields) }

func (m *MockLogger) Warn(msg string, fields ...logging.Field) { m.log("warn", msg, fields) }

func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }

// Fatal is recorded like any other level; it does not exit.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{rec: m.rec, name: m.name}
	child.fields = append(append([]logging.Field{}, m.fields...), fields...)
	return child
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := &MockLogger{rec: m.rec, name: name, fields: m.fields}
	if m.name != "" {
		child.name = m.name + "." + name
	}
	return child
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of the captured entries.
func (m *MockLogger) GetMessages() []LogMessage {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	out := make([]LogMessage, len(m.rec.entries))
	copy(out, m.rec.entries)
	return out
}

// HasMessage reports whether an entry with level and msg was captured.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, e := range m.GetMessages() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// FieldValue returns the value of key on the first entry with msg.
func (m *MockLogger) FieldValue(msg, key string) (interface{}, bool) {
	for _, e := range m.GetMessages() {
		if e.Message != msg {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	m.rec.mu.Lock()
	m.rec.entries = nil
	m.rec.mu.Unlock()
}

var _ logging.Logger = (*MockLogger)(nil)
