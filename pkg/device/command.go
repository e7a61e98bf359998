package device

import (
	"fmt"
	"time"

	"github.com/housekasa/kasa-go/pkg/log"
	"github.com/housekasa/kasa-go/pkg/wire"
)

// Set drives the control point at index i toward state. A positive pulse
// bounds the activation: once it expires, the point is commanded back to
// off. pulse == 0 clears any existing deadline. cause tags the emitted
// SET event with who asked.
//
// The command is recorded even when the device is silent; transmission
// resumes when the device reappears or the command times out.
func (m *Manager) Set(i int, state bool, pulse time.Duration, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(i, state, pulse, cause)
}

// SetPoint applies a set operation to every control point matching
// point: a device name, or "all" for every point in table order. The
// operation is not atomic across points; each device goes through the
// normal command path individually.
func (m *Manager) SetPoint(point string, state bool, pulse time.Duration, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pulse < 0 {
		return ErrInvalidPulse
	}

	found := false
	for i := 0; i < m.table.Len(); i++ {
		if point == "all" || point == m.table.At(i).Name {
			found = true
			if err := m.set(i, state, pulse, cause); err != nil {
				return err
			}
		}
	}
	if !found {
		return ErrUnknownPoint
	}
	return nil
}

// set is the locked core of Set.
func (m *Manager) set(i int, state bool, pulse time.Duration, cause string) error {
	if i < 0 || i >= m.table.Len() {
		return ErrUnknownPoint
	}
	if pulse < 0 {
		return ErrInvalidPulse
	}

	now := m.now()
	d := m.table.At(i)

	detail := stateName(state)
	if pulse > 0 {
		d.Deadline = now.Add(pulse)
		detail = fmt.Sprintf("%s FOR %d SECONDS", detail, int(pulse.Seconds()))
	} else {
		d.Deadline = time.Time{}
	}
	if cause != "" {
		detail = fmt.Sprintf("%s (%s)", detail, cause)
	}

	d.Commanded = state
	d.Pending = now.Add(confirmWindow)
	m.event(log.CategoryDevice, d.Name, log.ActionSet, detail)
	if m.metrics != nil {
		m.metrics.CommandsIssued.Inc()
	}

	// Only transmit if the device was detected on the network.
	if !d.Silent() {
		m.sendControl(i)
	}
	return nil
}

// sendControl transmits the set-relay message for the point's commanded
// state. Caller holds the lock.
func (m *Manager) sendControl(i int) {
	d := m.table.At(i)
	if d.Addr == nil {
		return
	}
	m.send(d.Addr, wire.SetRelayRequest(d.DeviceID, d.ChildID, d.Commanded))
}

// reset abandons any command cycle and realigns the point on the given
// state. Caller holds the lock.
func (m *Manager) reset(i int, to bool) {
	d := m.table.At(i)
	d.Commanded = to
	d.Status = to
	d.Pending = time.Time{}
	d.Deadline = time.Time{}
}
