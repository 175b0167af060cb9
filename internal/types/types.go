// Package types defines core domain types used throughout ufcsort.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Edition is the release segment of an event. The zero value is
// EditionMainEvent so a descriptor never carries an unset edition.
type Edition int

const (
	EditionMainEvent Edition = iota
	EditionPrelims
	EditionEarlyPrelims
)

// String returns the display name used in folder and file names
func (e Edition) String() string {
	switch e {
	case EditionPrelims:
		return "Prelims"
	case EditionEarlyPrelims:
		return "Early Prelims"
	default:
		return "Main Event"
	}
}

// ParseEdition maps a display name (case-insensitive) back to an Edition
func ParseEdition(s string) (Edition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main event", "main":
		return EditionMainEvent, true
	case "prelims":
		return EditionPrelims, true
	case "early prelims":
		return EditionEarlyPrelims, true
	}
	return EditionMainEvent, false
}

// Descriptor is the structured result of parsing one release name
type Descriptor struct {
	EventNumber  string  `json:"event_number"`
	FighterNames string  `json:"fighter_names,omitempty"`
	Edition      Edition `json:"edition"`
	Resolution   string  `json:"resolution,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
}

// Value returns the raw string value of a field
func (d *Descriptor) Value(f Field) string {
	switch f {
	case FieldEventNumber:
		return d.EventNumber
	case FieldFighterNames:
		return d.FighterNames
	case FieldEdition:
		return d.Edition.String()
	case FieldResolution:
		return d.Resolution
	}
	return ""
}

// Field identifies one descriptor field in a placement template
type Field int

const (
	FieldEventNumber Field = iota
	FieldFighterNames
	FieldEdition
	FieldResolution
)

// AllFields lists every field in default rendering order
var AllFields = []Field{FieldEventNumber, FieldFighterNames, FieldEdition, FieldResolution}

// String returns the configuration name of the field
func (f Field) String() string {
	switch f {
	case FieldEventNumber:
		return "event_number"
	case FieldFighterNames:
		return "fighter_names"
	case FieldEdition:
		return "edition"
	case FieldResolution:
		return "resolution"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField parses a configuration field name
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "event_number":
		return FieldEventNumber, nil
	case "fighter_names":
		return FieldFighterNames, nil
	case "edition":
		return FieldEdition, nil
	case "resolution":
		return FieldResolution, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// FieldSet is a set of fields
type FieldSet map[Field]bool

// NewFieldSet builds a set from the given fields
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = true
	}
	return s
}

// Has reports whether f is in the set
func (s FieldSet) Has(f Field) bool {
	return s[f]
}

// OperationStatus represents the status of a placement operation.
// StatusSkipped means the file was not applicable (no event number, non-strict).
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusSkipped OperationStatus = "skipped"
	StatusFailed  OperationStatus = "failed"
)

// Action is the filesystem effect chosen for a placement
type Action string

const (
	ActionNone    Action = "none"
	ActionMove    Action = "move"
	ActionReplace Action = "replace"
)

// Operation represents a planned or completed placement
type Operation struct {
	SourcePath   string          `json:"source_path"`
	TargetPath   string          `json:"target_path,omitempty"`
	ReplacedPath string          `json:"replaced_path,omitempty"`
	Descriptor   *Descriptor     `json:"descriptor,omitempty"`
	Action       Action          `json:"action"`
	Status       OperationStatus `json:"status"`
	Message      string          `json:"message,omitempty"`
	DryRun       bool            `json:"dry_run,omitempty"`
	Err          error           `json:"-"`
}

// Failed reports whether the operation failed
func (o *Operation) Failed() bool {
	return o.Status == StatusFailed
}

// JournalEntry records one successful placement
type JournalEntry struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	SourcePath   string    `json:"source_path"`
	TargetPath   string    `json:"target_path"`
	ReplacedPath string    `json:"replaced_path,omitempty"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventType represents the type of progress event
type EventType string

const (
	EventInfo     EventType = "info"
	EventProgress EventType = "progress"
	EventSuccess  EventType = "success"
	EventWarning  EventType = "warning"
	EventError    EventType = "error"
)

// Event represents a progress event during operations
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// EventHandler receives progress events during operations
type EventHandler func(Event)
