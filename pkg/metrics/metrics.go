// Package metrics exposes Prometheus instrumentation for the Kasa
// control service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the observable activity of the device manager and the
// UDP transport. A nil *Metrics disables instrumentation; callers guard
// each use.
type Metrics struct {
	DatagramsSent     prometheus.Counter
	DatagramsReceived prometheus.Counter
	DecodeErrors      prometheus.Counter
	CommandsIssued    prometheus.Counter
	Retries           prometheus.Counter
	Timeouts          prometheus.Counter
	DevicesDiscovered prometheus.Counter
	DevicesTotal      prometheus.Gauge
	DevicesSilent     prometheus.Gauge
}

// New registers the service metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DatagramsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_datagrams_sent_total",
			Help: "Total number of UDP datagrams sent to devices",
		}),
		DatagramsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_datagrams_received_total",
			Help: "Total number of UDP datagrams received from devices",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_decode_errors_total",
			Help: "Total number of datagrams dropped as malformed",
		}),
		CommandsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_commands_issued_total",
			Help: "Total number of set commands accepted",
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_command_retries_total",
			Help: "Total number of command re-transmissions",
		}),
		Timeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_command_timeouts_total",
			Help: "Total number of commands abandoned unconfirmed",
		}),
		DevicesDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "kasa_devices_discovered_total",
			Help: "Total number of devices added by discovery",
		}),
		DevicesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kasa_devices",
			Help: "Number of control points in the device table",
		}),
		DevicesSilent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kasa_devices_silent",
			Help: "Number of control points currently silent",
		}),
	}
}
