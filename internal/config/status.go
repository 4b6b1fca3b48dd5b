package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meowbar/meowbar/internal/models"
)

// MaxEventsLog caps the number of entries kept in the status file's events log.
const MaxEventsLog = 50

// PromptSubmitEvent is the hook event that counts as a new prompt.
const PromptSubmitEvent = "UserPromptSubmit"

// EnsureStatusFile creates the status file's directory and, when the file is
// absent, writes the minimal default document. An existing file is never
// overwritten.
func EnsureStatusFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("failed to create status file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(models.DefaultStatusFile); err != nil {
		return fmt.Errorf("failed to write status file %s: %w", path, err)
	}
	return nil
}

// ReadStatus reads and decodes the status file. A missing file yields the
// empty document.
func ReadStatus(path string) (*models.StatusDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.EmptyStatus(), nil
		}
		return nil, fmt.Errorf("failed to read status file %s: %w", path, err)
	}
	return models.DecodeStatus(data)
}

// WriteStatus atomically replaces the status file with doc.
func WriteStatus(path string, doc *models.StatusDocument) error {
	data, err := models.EncodeStatus(doc)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// StatusUpdate is one producer-side change to the status file.
type StatusUpdate struct {
	State     models.CatState
	Event     string
	Detail    string
	ToolName  string
	Error     string
	SessionID string
}

// ApplyUpdate returns a new document with u applied on top of prev.
// prev is not modified.
func ApplyUpdate(prev *models.StatusDocument, u StatusUpdate, now time.Time) (*models.StatusDocument, error) {
	if !u.State.Valid() {
		return nil, fmt.Errorf("unknown state %q", u.State)
	}

	doc := prev.Clone()
	if doc == nil {
		doc = models.EmptyStatus()
	}
	stamp := now.UTC().Format(time.RFC3339)

	switch {
	case u.SessionID != "":
		if doc.SessionID == nil || *doc.SessionID != u.SessionID {
			startSession(doc, u.SessionID, stamp)
		}
	case u.State == models.StateStarting || doc.SessionID == nil:
		startSession(doc, uuid.New().String(), stamp)
	}

	doc.State = u.State
	doc.Timestamp = stamp
	doc.LastEvent = optional(u.Event)
	doc.ToolName = optional(u.ToolName)
	doc.ErrorMessage = optional(u.Error)

	if u.ToolName != "" {
		doc.ToolCallCount = increment(doc.ToolCallCount)
	}
	if u.Event == PromptSubmitEvent {
		doc.PromptCount = increment(doc.PromptCount)
	}
	if u.State == models.StateError {
		doc.ErrorCount = increment(doc.ErrorCount)
	}

	if u.Event != "" {
		doc.EventsLog = append(doc.EventsLog, models.EventEntry{
			Event:  u.Event,
			Time:   stamp,
			Detail: u.Detail,
		})
		if len(doc.EventsLog) > MaxEventsLog {
			doc.EventsLog = doc.EventsLog[len(doc.EventsLog)-MaxEventsLog:]
		}
	}
	return doc, nil
}

// RecordStatus reads the status file, applies u and writes it back atomically.
// An undecodable file is replaced rather than preserved.
func RecordStatus(path string, u StatusUpdate) (*models.StatusDocument, error) {
	prev, err := ReadStatus(path)
	if err != nil && !models.IsDecodeError(err) {
		return nil, err
	}

	doc, err := ApplyUpdate(prev, u, time.Now())
	if err != nil {
		return nil, err
	}
	if err := WriteStatus(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func startSession(doc *models.StatusDocument, id, stamp string) {
	doc.SessionID = &id
	doc.SessionStartTime = &stamp
	doc.ToolCallCount = nil
	doc.PromptCount = nil
	doc.ErrorCount = nil
	doc.EventsLog = nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func increment(n *int) *int {
	v := 1
	if n != nil {
		v = *n + 1
	}
	return &v
}
