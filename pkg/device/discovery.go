package device

import (
	"fmt"
	"net"
	"time"

	"github.com/housekasa/kasa-go/pkg/log"
	"github.com/housekasa/kasa-go/pkg/wire"
)

// Periodic runs the discovery and command state machine. The host loop
// calls it every second; the broadcast sweep and the per-device cadence
// gate themselves internally.
func (m *Manager) Periodic(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Broadcast sweep on every configured target.
	if !now.Before(m.lastSweep.Add(sweepInterval)) {
		for _, t := range m.targets {
			m.send(t.Addr, wire.SenseRequest())
		}
		m.lastSweep = now
	}

	if now.Before(m.lastRetry.Add(retryCadence)) {
		return
	}
	m.lastRetry = now

	for i := 0; i < m.table.Len(); i++ {
		d := m.table.At(i)

		// Directed probe when the last one is stale.
		if d.Addr != nil && !now.Before(d.LastSense.Add(probeStaleAfter)) {
			m.send(d.Addr, wire.SenseRequest())
			d.LastSense = now
		}

		// A device that missed three probes is silent.
		if !d.Detected.IsZero() && d.Detected.Before(now.Add(-silenceAfter)) {
			m.event(log.CategoryDevice, d.Name, log.ActionSilent,
				"ADDRESS "+addrText(d.Addr))
			m.reset(i, false)
			d.Detected = time.Time{}
		}

		// Pulse expiry runs before mismatch handling: it sets a new
		// commanded state that the retransmit below may act on.
		if !d.Deadline.IsZero() && !now.Before(d.Deadline) {
			m.event(log.CategoryDevice, d.Name, log.ActionReset, "END OF PULSE")
			d.Commanded = false
			d.Pending = now.Add(confirmWindow)
			d.Deadline = time.Time{}
		}

		if d.Status != d.Commanded {
			if d.Pending.After(now) {
				if !d.Silent() {
					m.event(log.CategoryDevice, d.Name, log.ActionRetry,
						stateName(d.Commanded))
					if m.metrics != nil {
						m.metrics.Retries.Inc()
					}
					m.sendControl(i)
				}
			} else {
				if !d.Pending.IsZero() {
					m.event(log.CategoryDevice, d.Name, log.ActionTimeout, "")
					if m.metrics != nil {
						m.metrics.Timeouts.Inc()
					}
				}
				m.reset(i, d.Status)
			}
		}
	}

	m.updateGauges()
}

// HandleDatagram ingests one datagram from the transport: deobfuscate,
// parse, and dispatch to sysinfo or set-relay handling. Malformed
// datagrams are logged and dropped.
func (m *Manager) HandleDatagram(data []byte, peer *net.UDPAddr) {
	if m.metrics != nil {
		m.metrics.DatagramsReceived.Inc()
	}

	plain := wire.Unscramble(data)
	reply, err := wire.ParseReply(plain)
	if err != nil {
		m.tracer.Warn("malformed reply", "peer", peer.String(), "error", err)
		if m.metrics != nil {
			m.metrics.DecodeErrors.Inc()
		}
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case reply.System.GetSysinfo != nil:
		m.handleSysinfo(reply.System.GetSysinfo, peer)
	case reply.System.SetRelayState != nil:
		m.handleAck(reply.System.SetRelayState, peer)
	}
}

// handleSysinfo ingests one sysinfo reply: auto-add newly seen control
// points, refresh addresses, and feed relay states to the command state
// machine. Caller holds the lock.
func (m *Manager) handleSysinfo(info *wire.Sysinfo, peer *net.UDPAddr) {
	if info.DeviceID == "" {
		m.tracer.Warn("sysinfo without device ID", "peer", peer.String())
		return
	}
	now := m.now()

	if len(info.Children) > 0 {
		for _, child := range info.Children {
			if child.ID == "" {
				continue
			}
			i := m.table.FindByID(info.DeviceID, child.ID)
			if i < 0 {
				var err error
				i, err = m.table.Add(info.DeviceID, child.ID)
				if err != nil {
					m.tracer.Warn("no space for device",
						"deviceId", info.DeviceID, "childId", child.ID)
					continue
				}
				d := m.table.At(i)
				d.Name = child.Alias
				d.Addr = peer
				m.event(log.CategoryDevice, d.Name, log.ActionDiscovered,
					fmt.Sprintf("ADDRESS %s (CHILD %s)", peer.IP, child.ID))
				m.changed = true
				if m.metrics != nil {
					m.metrics.DevicesDiscovered.Inc()
				}
				// Freshly discovered: detected without a DETECTED event.
				d.Detected = now
			}
			d := m.table.At(i)
			d.Addr = peer
			if d.Model == "" {
				d.Model = info.Model
			}
			m.statusUpdate(i, child.State != 0, now)
		}
		return
	}

	i := m.table.FindByID(info.DeviceID, "")
	if i < 0 {
		var err error
		i, err = m.table.Add(info.DeviceID, "")
		if err != nil {
			m.tracer.Warn("no space for device", "deviceId", info.DeviceID)
			return
		}
		d := m.table.At(i)
		d.Name = info.Alias
		d.Addr = peer
		m.event(log.CategoryDevice, d.Name, log.ActionDiscovered,
			"ADDRESS "+peer.IP.String())
		m.changed = true
		if m.metrics != nil {
			m.metrics.DevicesDiscovered.Inc()
		}
	}
	d := m.table.At(i)
	d.Addr = peer
	if d.Model == "" {
		d.Model = info.Model
	}
	m.statusUpdate(i, info.RelayState != 0, now)
}

// handleAck reacts to a successful set-relay acknowledgment. The ack
// carries neither child identity nor final state, so the device is
// probed immediately and confirmation rides on the next sysinfo.
// Caller holds the lock.
func (m *Manager) handleAck(result *wire.SetRelayResult, peer *net.UDPAddr) {
	if result.ErrCode != 0 {
		m.tracer.Warn("set-relay error", "peer", peer.String(), "errCode", result.ErrCode)
		return
	}
	i := m.table.FindByAddress(peer.IP)
	if i < 0 {
		return
	}
	d := m.table.At(i)
	m.send(d.Addr, wire.SenseRequest())
	d.LastSense = m.now()
}

// statusUpdate feeds one observed relay state into the command state
// machine, discriminating our own confirmations from third-party
// changes. Caller holds the lock.
func (m *Manager) statusUpdate(i int, status bool, now time.Time) {
	d := m.table.At(i)

	if d.Silent() {
		m.event(log.CategoryDevice, d.Name, log.ActionDetected,
			"ADDRESS "+addrText(d.Addr))
	}

	if status != d.Status {
		transition := fmt.Sprintf("FROM %s TO %s", stateName(d.Status), stateName(status))
		if !d.Pending.IsZero() && status == d.Commanded {
			m.event(log.CategoryDevice, d.Name, log.ActionConfirmed, transition)
			d.Pending = time.Time{}
		} else {
			// Device commanded by someone else.
			m.event(log.CategoryDevice, d.Name, log.ActionChanged, transition)
			d.Commanded = status
			d.Pending = time.Time{}
		}
		d.Status = status
	}

	d.Detected = now
}

// addrText renders an address for event details, tolerating records
// that have never been seen.
func addrText(addr *net.UDPAddr) string {
	if addr == nil {
		return "unknown"
	}
	return addr.IP.String()
}
