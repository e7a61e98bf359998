package device

import (
	"time"
)

// FailureSilent is the failure string reported for a silent device.
const FailureSilent = "silent"

// Count returns the number of control points.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Len()
}

// Name returns the control point's user-facing label, or "" for an
// out-of-range index.
func (m *Manager) Name(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.table.Len() {
		return ""
	}
	return m.table.At(i).Name
}

// Failure returns "silent" when the control point has not been detected
// on the network, "" when healthy.
func (m *Manager) Failure(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.table.Len() {
		return ""
	}
	if m.table.At(i).Silent() {
		return FailureSilent
	}
	return ""
}

// Get returns the control point's last observed relay state.
func (m *Manager) Get(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.table.Len() {
		return false
	}
	return m.table.At(i).Status
}

// Commanded returns the state the control point is being driven toward.
func (m *Manager) Commanded(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.table.Len() {
		return false
	}
	return m.table.At(i).Commanded
}

// Deadline returns when the control point's pulse expires, zero if no
// pulse is active.
func (m *Manager) Deadline(i int) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= m.table.Len() {
		return time.Time{}
	}
	return m.table.At(i).Deadline
}

// PointStatus is one control point's externally visible state.
type PointStatus struct {
	// Name is the control point's label.
	Name string

	// State is "on", "off", or a failure string such as "silent".
	State string

	// Command is "on" or "off".
	Command string

	// Pulse is when the active pulse expires, zero if none.
	Pulse time.Time
}

// StatusSnapshot returns the state of every control point, taken under
// one lock acquisition so no point reflects a partial update.
func (m *Manager) StatusSnapshot() []PointStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	points := make([]PointStatus, 0, m.table.Len())
	for i := 0; i < m.table.Len(); i++ {
		d := m.table.At(i)
		state := stateName(d.Status)
		if d.Silent() {
			state = FailureSilent
		}
		points = append(points, PointStatus{
			Name:    d.Name,
			State:   state,
			Command: stateName(d.Commanded),
			Pulse:   d.Deadline,
		})
	}
	return points
}
