package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// LogEntry is one normalized observed event
type LogEntry struct {
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      types.LogType `json:"type"`
	Category  string        `json:"category,omitempty"`
	Message   string        `json:"message"`
	Metadata  *Metadata     `json:"metadata,omitempty"`
}

// NewLogEntryID generates a fresh entry ID
func NewLogEntryID() string {
	return uuid.NewString()
}

// Validate checks the entry against the canonical LogEntry shape
func (e *LogEntry) Validate() error {
	if e.ID == "" {
		return goerr.Wrap(ErrInvalidLogEntry, "id is required", goerr.V(FieldKey, "id"))
	}
	if e.Timestamp == "" {
		return goerr.Wrap(ErrInvalidLogEntry, "timestamp is required",
			goerr.V(FieldKey, "timestamp"), goerr.V(EntryIDKey, e.ID))
	}
	if !e.Type.IsValid() {
		return goerr.Wrap(ErrInvalidLogEntry, "type must be one of performance, accessibility, error, ui",
			goerr.V(FieldKey, "type"), goerr.V(EntryIDKey, e.ID), goerr.V(ValueKey, string(e.Type)))
	}
	if e.Message == "" {
		return goerr.Wrap(ErrInvalidLogEntry, "message is required",
			goerr.V(FieldKey, "message"), goerr.V(EntryIDKey, e.ID))
	}
	return nil
}
