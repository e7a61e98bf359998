package device

import (
	"net"

	"github.com/housekasa/kasa-go/pkg/config"
	"github.com/housekasa/kasa-go/pkg/log"
	"github.com/housekasa/kasa-go/pkg/wire"
)

// Refresh re-seats the device table and broadcast targets from a
// configuration document. Runtime state (detected, pending, deadline)
// is dropped and re-learned from the network; the last observed relay
// state and address survive for points that stay configured. A nil
// document seeds an empty table with discovery headroom.
//
// DNS resolution of broadcast targets happens here, never during the
// tick.
func (m *Manager) Refresh(doc *config.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var devices []config.Device
	var nets []string
	if doc != nil {
		devices = doc.Kasa.Devices
		nets = doc.Kasa.Net
	}

	old := m.table
	m.table = Table{}
	m.table.EnsureSpace(len(devices) + discoveryHeadroom)

	for _, cd := range devices {
		if cd.ID == "" {
			continue
		}
		if m.table.FindByID(cd.ID, cd.Child) >= 0 {
			continue // Duplicate in config.
		}
		i, err := m.table.Add(cd.ID, cd.Child)
		if err != nil {
			m.tracer.Warn("no space for configured device", "deviceId", cd.ID)
			continue
		}
		d := m.table.At(i)
		d.Name = cd.Name
		d.Model = cd.Model
		d.Description = cd.Description

		// Carry the last observation across the reload; the command
		// cycle restarts aligned on it.
		if prev := old.FindByID(cd.ID, cd.Child); prev >= 0 {
			p := old.At(prev)
			d.Addr = p.Addr
			d.Status = p.Status
			if d.Model == "" {
				d.Model = p.Model
			}
		}
		m.reset(i, d.Status)
	}

	m.rebuildTargets(nets)
	m.updateGauges()
}

// rebuildTargets resolves the configured broadcast targets. The implicit
// all-interfaces broadcast always sits at index 0 with an empty key;
// entries that fail to resolve are skipped. Caller holds the lock.
func (m *Manager) rebuildTargets(nets []string) {
	m.targets = []Target{{
		Addr: &net.UDPAddr{IP: net.IPv4bcast, Port: wire.KasaPort},
	}}

	for _, key := range nets {
		if key == "" {
			continue
		}
		ips, err := m.resolve(key)
		if err != nil {
			m.tracer.Warn("cannot resolve broadcast target", "target", key, "error", err)
			continue
		}
		var ip net.IP
		for _, candidate := range ips {
			if v4 := candidate.To4(); v4 != nil {
				ip = v4
				break
			}
		}
		if ip == nil {
			m.tracer.Warn("no IPv4 address for broadcast target", "target", key)
			continue
		}
		m.targets = append(m.targets, Target{
			Key:  key,
			Addr: &net.UDPAddr{IP: ip, Port: wire.KasaPort},
		})
		m.event(log.CategorySystem, key, log.ActionNetworkAdded, "ADDRESS "+ip.String())
	}
}

// Changed reports whether discovery mutated the device set since the
// last call, and clears the flag. The configuration bridge polls it to
// know when a re-save is due.
func (m *Manager) Changed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.changed {
		m.changed = false
		return true
	}
	return false
}

// LiveConfig serialises the current device table and broadcast targets
// back into a configuration document, typically to persist after
// Changed reports an autodetect delta.
func (m *Manager) LiveConfig() *config.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := &config.Document{}
	doc.Kasa.Devices = make([]config.Device, 0, m.table.Len())
	for i := 0; i < m.table.Len(); i++ {
		d := m.table.At(i)
		doc.Kasa.Devices = append(doc.Kasa.Devices, config.Device{
			Name:        d.Name,
			ID:          d.DeviceID,
			Child:       d.ChildID,
			Model:       d.Model,
			Description: d.Description,
		})
	}
	for _, t := range m.targets {
		if t.Key != "" {
			doc.Kasa.Net = append(doc.Kasa.Net, t.Key)
		}
	}
	return doc
}

// Targets returns a copy of the broadcast-target list.
func (m *Manager) Targets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Target, len(m.targets))
	copy(out, m.targets)
	return out
}
