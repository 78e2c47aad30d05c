package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEvent represents a custody, authorization, or submission event.
type AuditEvent struct {
	EventID   string            `json:"eventId"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"eventType"` // e.g. "RecordStored", "CredentialVerification"
	EntityID  string            `json:"entityId"`  // e.g. owner ID or caller ID (hex)
	Result    string            `json:"result"`    // "success" or "failure"
	Reason    string            `json:"reason"`    // error message or reason code
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEvent fills in the ID and timestamp so callers only supply the facts.
func NewEvent(eventType, entityID, result, reason string, metadata map[string]string) AuditEvent {
	return AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		EntityID:  entityID,
		Result:    result,
		Reason:    reason,
		Metadata:  metadata,
	}
}

// AuditLogger is the interface for logging audit events.
type AuditLogger interface {
	LogEvent(event AuditEvent)
}

// StdoutAuditLogger is a simple implementation that logs to stdout.
type StdoutAuditLogger struct{}

func (l *StdoutAuditLogger) LogEvent(event AuditEvent) {
	fmt.Printf("[%s] [%s] Entity: %s, Result: %s, Reason: %s, Metadata: %+v\n",
		event.Timestamp.Format(time.RFC3339), event.EventType, event.EntityID, event.Result, event.Reason, event.Metadata)
}

// NewStdoutAuditLogger returns a new StdoutAuditLogger.
func NewStdoutAuditLogger() AuditLogger {
	return &StdoutAuditLogger{}
}

// FileAuditLogger appends events as JSON lines to a file. Events that
// fail to encode or write are dropped with a stderr note; audit must
// never take the serving path down.
type FileAuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileAuditLogger(path string) (*FileAuditLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &FileAuditLogger{file: f}, nil
}

func (l *FileAuditLogger) LogEvent(event AuditEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AUDIT] drop event %s: %v\n", event.EventID, err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "[AUDIT] write failed: %v\n", err)
	}
}

func (l *FileAuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// NopAuditLogger discards events. Handy in tests.
type NopAuditLogger struct{}

func (NopAuditLogger) LogEvent(AuditEvent) {}
