package domain

import "time"

// EventKind describes what happened in the ingestion pipeline
type EventKind string

// event kinds
const (
	EventIngested      EventKind = "ingested"
	EventSourceFailed  EventKind = "source_failed"
	EventTickDone      EventKind = "tick_done"
	EventNotConfigured EventKind = "not_configured"
)

// Event is published by the scheduler for UI-facing consumers
type Event struct {
	Kind       EventKind
	Platform   Platform
	SourceID   int64
	Inserted   int
	Duplicates int
	Failed     int
	Err        string
	At         time.Time
}

// PlatformState is the externally visible state of a platform
type PlatformState string

// platform states
const (
	StateIdle          PlatformState = "idle"
	StatePolling       PlatformState = "polling"
	StateDisabled      PlatformState = "disabled"
	StateNotConfigured PlatformState = "not_configured"
)

// PlatformStatus summarizes a platform for status endpoints
type PlatformStatus struct {
	Platform   Platform
	State      PlatformState
	Reason     string
	LastTickAt *time.Time
	Sources    int
}
