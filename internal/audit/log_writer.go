package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// LogWriter emits audit entries as JSON lines on a logger.
type LogWriter struct {
	logger *log.Logger
}

// NewLogWriter constructs a log-backed audit logger.
func NewLogWriter(logger *log.Logger) (*LogWriter, error) {
	if logger == nil {
		return nil, errors.New("audit: nil logger")
	}
	return &LogWriter{logger: logger}, nil
}

// Log writes an audit entry, filling id and timestamp when absent.
func (w *LogWriter) Log(_ context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	w.logger.Printf("audit %s", data)
	return nil
}
