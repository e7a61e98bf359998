package device

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/housekasa/kasa-go/pkg/log"
	"github.com/housekasa/kasa-go/pkg/metrics"
	"github.com/housekasa/kasa-go/pkg/wire"
)

// Timing of the periodic tick. All windows derive from the Kasa probe
// cadence: a device missing three directed probes is considered silent.
const (
	// sweepInterval is how often the broadcast sweep runs.
	sweepInterval = 60 * time.Second

	// retryCadence gates per-device probe, retry and timeout handling.
	retryCadence = 5 * time.Second

	// probeStaleAfter is how old a directed probe may get before the
	// device is probed again.
	probeStaleAfter = 35 * time.Second

	// silenceAfter is how long a detected device may stay quiet before
	// it transitions to silent.
	silenceAfter = 100 * time.Second

	// confirmWindow is how long a command waits for confirmation.
	confirmWindow = 5 * time.Second

	// discoveryHeadroom is how many records past the configured set
	// discovery may add before a configuration reload.
	discoveryHeadroom = 32
)

// Sender transmits one wire payload to a device or broadcast address.
// The UDP transport implements it; tests substitute a capture fake.
type Sender interface {
	Send(addr *net.UDPAddr, payload []byte) error
}

// Resolver turns a configured broadcast-target key into addresses.
// Defaults to net.LookupIP; tests substitute a fixture.
type Resolver func(host string) ([]net.IP, error)

// Target is one network the service senses on. The implicit
// all-interfaces broadcast target sits at index 0 with an empty key.
type Target struct {
	// Key is the configured hostname or IP in text form.
	Key string

	// Addr is the resolved address, port 9999.
	Addr *net.UDPAddr
}

// Options configures a Manager. Sender is required; everything else
// has a working default.
type Options struct {
	// Sender transmits wire payloads.
	Sender Sender

	// Events receives service events. Defaults to NoopLogger.
	Events log.Logger

	// Tracer receives diagnostics. Defaults to slog.Default().
	Tracer *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Metrics

	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time

	// Resolve resolves broadcast-target keys. Defaults to net.LookupIP.
	Resolve Resolver

	// Instance stamps events with the service run identity.
	Instance string
}

// Manager owns the device table and drives discovery, sensing and the
// per-device command state machine. All exported methods are safe for
// concurrent use; one mutex serialises every handler.
type Manager struct {
	mu      sync.Mutex
	table   Table
	targets []Target

	// changed is raised whenever discovery mutates the device set; the
	// configuration bridge reads and clears it via Changed.
	changed bool

	sender   Sender
	events   log.Logger
	tracer   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	resolve  Resolver
	instance string

	lastSweep time.Time
	lastRetry time.Time
}

// NewManager creates a manager with an empty device table. Call Refresh
// to seed it from configuration before the first tick.
func NewManager(opts Options) *Manager {
	if opts.Events == nil {
		opts.Events = log.NoopLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Resolve == nil {
		opts.Resolve = net.LookupIP
	}
	return &Manager{
		sender:   opts.Sender,
		events:   opts.Events,
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
		now:      opts.Now,
		resolve:  opts.Resolve,
		instance: opts.Instance,
	}
}

// event emits one service event.
func (m *Manager) event(category, subject, action, detail string) {
	m.events.Log(log.Event{
		Timestamp: m.now(),
		Instance:  m.instance,
		Category:  category,
		Subject:   subject,
		Action:    action,
		Detail:    detail,
	})
}

// send scrambles and transmits one payload. Send errors are already
// logged by the transport; they never interrupt the tick.
func (m *Manager) send(addr *net.UDPAddr, plain []byte) {
	scrambled, err := wire.Scramble(plain)
	if err != nil {
		m.tracer.Error("payload too large", "size", len(plain))
		return
	}
	if m.sender == nil {
		return
	}
	if err := m.sender.Send(addr, scrambled); err == nil && m.metrics != nil {
		m.metrics.DatagramsSent.Inc()
	}
}

// updateGauges refreshes the device-count metrics. Caller holds the lock.
func (m *Manager) updateGauges() {
	if m.metrics == nil {
		return
	}
	silent := 0
	for i := 0; i < m.table.Len(); i++ {
		if m.table.At(i).Silent() {
			silent++
		}
	}
	m.metrics.DevicesTotal.Set(float64(m.table.Len()))
	m.metrics.DevicesSilent.Set(float64(silent))
}
