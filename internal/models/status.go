package models

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultStatusFile is written when the status file does not exist yet.
const DefaultStatusFile = `{"state":"idle","timestamp":"","events_log":[]}`

// EventEntry is one line of the producer's event log.
type EventEntry struct {
	Event  string `json:"event"`
	Time   string `json:"time"`
	Detail string `json:"detail"`
}

// StatusDocument is the decoded content of the status file.
// This corresponds to ~/.claude/meow-state.json.
type StatusDocument struct {
	State     CatState `json:"state"`
	Timestamp string   `json:"timestamp"`

	SessionID    *string      `json:"session_id,omitempty"`
	LastEvent    *string      `json:"last_event,omitempty"`
	ToolName     *string      `json:"tool_name,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	EventsLog    []EventEntry `json:"events_log,omitempty"`

	SessionStartTime *string `json:"session_start_time,omitempty"`
	ToolCallCount    *int    `json:"tool_call_count,omitempty"`
	PromptCount      *int    `json:"prompt_count,omitempty"`
	ErrorCount       *int    `json:"error_count,omitempty"`
}

// EmptyStatus returns the default document: idle with nothing else set.
func EmptyStatus() *StatusDocument {
	return &StatusDocument{State: StateIdle}
}

// Error returns the error message or "" when absent.
func (d *StatusDocument) Error() string {
	if d == nil || d.ErrorMessage == nil {
		return ""
	}
	return *d.ErrorMessage
}

// RecentEvents returns at most n of the newest log entries, oldest first.
func (d *StatusDocument) RecentEvents(n int) []EventEntry {
	if d == nil || n <= 0 || len(d.EventsLog) == 0 {
		return nil
	}
	if len(d.EventsLog) <= n {
		return d.EventsLog
	}
	return d.EventsLog[len(d.EventsLog)-n:]
}

// SessionDuration returns how long the session has been running. ok is
// false when the start time is absent or not RFC3339.
func (d *StatusDocument) SessionDuration(now time.Time) (elapsed time.Duration, ok bool) {
	if d == nil || d.SessionStartTime == nil {
		return 0, false
	}
	started, err := time.Parse(time.RFC3339, *d.SessionStartTime)
	if err != nil {
		return 0, false
	}
	if elapsed = now.Sub(started); elapsed < 0 {
		elapsed = 0
	}
	return elapsed, true
}

// Clone returns a deep copy so writers never share slices with readers.
func (d *StatusDocument) Clone() *StatusDocument {
	if d == nil {
		return nil
	}
	c := *d
	if d.EventsLog != nil {
		c.EventsLog = append([]EventEntry(nil), d.EventsLog...)
	}
	return &c
}

// DecodeError reports status file content that cannot be used.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode status: %s: %v", e.Reason, e.Err)
	}
	return "decode status: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is (or wraps) a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// DecodeStatus parses status file bytes. Unknown fields are ignored.
func DecodeStatus(data []byte) (*StatusDocument, error) {
	var probe struct {
		State *string `json:"state"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &DecodeError{Reason: "malformed JSON", Err: err}
	}
	if probe.State == nil {
		return nil, &DecodeError{Reason: "missing state"}
	}
	if !CatState(*probe.State).Valid() {
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown state %q", *probe.State)}
	}

	var doc StatusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Reason: "schema mismatch", Err: err}
	}
	return &doc, nil
}

// EncodeStatus serializes a document for the status file.
func EncodeStatus(doc *StatusDocument) ([]byte, error) {
	if doc == nil {
		doc = EmptyStatus()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}
	return data, nil
}
