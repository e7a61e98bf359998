package device

import (
	"net"
	"time"
)

// Record tracks one control point. Zero time values mean "never": a zero
// Detected marks the device silent, a zero Pending means no outstanding
// command, a zero Deadline means no active pulse.
type Record struct {
	// Name is the user-facing label; for a child outlet this is
	// typically the per-outlet alias reported by the device.
	Name string

	// DeviceID is the Kasa identifier of the physical device, shared
	// across children of a multi-plug unit.
	DeviceID string

	// ChildID identifies an outlet within a multi-outlet device.
	// Empty for single-outlet devices.
	ChildID string

	// Model is the vendor model string captured from sysinfo.
	Model string

	// Description is free-form, carried from configuration.
	Description string

	// Addr is the last-known network address, updated on every
	// received sysinfo. Nil until the device has been seen.
	Addr *net.UDPAddr

	// Detected is the time of the last successful sysinfo reply.
	Detected time.Time

	// LastSense is the time of the most recent directed probe.
	LastSense time.Time

	// Status is the device's last reported relay state.
	Status bool

	// Commanded is the state the device is being driven toward.
	Commanded bool

	// Pending is the deadline by which Status must match Commanded
	// before the command is abandoned.
	Pending time.Time

	// Deadline is when the current pulse expires and Commanded resets
	// to off.
	Deadline time.Time
}

// Silent reports whether the device has not been detected on the network.
func (r *Record) Silent() bool {
	return r.Detected.IsZero()
}

// stateName renders a relay state the way events spell it.
func stateName(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
