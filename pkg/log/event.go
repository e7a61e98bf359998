package log

import (
	"time"
)

// Event represents one service event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Instance identifies the service run that produced the event (UUID).
	Instance string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event source.
	Category string `cbor:"3,keyasint"`

	// Subject names what the event is about, typically a device name.
	Subject string `cbor:"4,keyasint"`

	// Action is what happened.
	Action string `cbor:"5,keyasint"`

	// Detail is free-form context (target state, address, cause).
	Detail string `cbor:"6,keyasint,omitempty"`
}

// Event categories.
const (
	// CategoryDevice covers per-device lifecycle and command events.
	CategoryDevice = "DEVICE"
	// CategorySystem covers configuration and network-target events.
	CategorySystem = "SYSTEM"
	// CategoryService covers process-level events (startup, shutdown).
	CategoryService = "SERVICE"
)

// Device actions.
const (
	// ActionSet records a commanded state change.
	ActionSet = "SET"
	// ActionRetry records a re-transmission of a pending command.
	ActionRetry = "RETRY"
	// ActionTimeout records a command abandoned unconfirmed.
	ActionTimeout = "TIMEOUT"
	// ActionReset records a forced realignment of the commanded state.
	ActionReset = "RESET"
	// ActionConfirmed records a device reaching its commanded state.
	ActionConfirmed = "CONFIRMED"
	// ActionChanged records a state change commanded by a third party.
	ActionChanged = "CHANGED"
	// ActionDetected records a device answering after being silent.
	ActionDetected = "DETECTED"
	// ActionDiscovered records a device seen for the first time.
	ActionDiscovered = "DISCOVERED"
	// ActionSilent records a device that stopped answering probes.
	ActionSilent = "SILENT"
)

// Service actions.
const (
	// ActionStart records service startup.
	ActionStart = "START"
	// ActionStop records service shutdown.
	ActionStop = "STOP"
)

// System actions.
const (
	// ActionNetworkAdded records a broadcast target entering service.
	ActionNetworkAdded = "NETWORK ADDED"
	// ActionConfigLoad records a configuration load from the depot.
	ActionConfigLoad = "LOAD"
	// ActionConfigSave records a configuration save to the depot.
	ActionConfigSave = "SAVE"
)
