// Package announce advertises the control service on the local network
// via mDNS, so dashboards and companion tools can find the HTTP surface
// without static configuration.
package announce

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the DNS-SD service type of the control surface.
	ServiceType = "_kasa-control._tcp"

	// Domain is the DNS-SD domain.
	Domain = "local."
)

// Config configures the announcer.
type Config struct {
	// Interface selects which network interface to advertise on.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL. Default: 120 seconds.
	TTL time.Duration
}

// DefaultConfig returns the default announcer configuration.
func DefaultConfig() Config {
	return Config{
		TTL: 120 * time.Second,
	}
}

// Info describes the advertised service.
type Info struct {
	// Name is the service instance name, typically the host name.
	Name string

	// Port is the HTTP control port.
	Port int

	// Instance identifies the service run (UUID).
	Instance string

	// Version is the service version string.
	Version string

	// Devices is the number of known control points. Updated live via
	// SetDevices.
	Devices int
}

// Announcer advertises one control-service instance.
type Announcer struct {
	config Config

	mu     sync.Mutex
	server *zeroconf.Server
	info   Info
}

// New creates an announcer. Nothing is advertised until Start.
func New(config Config) *Announcer {
	return &Announcer{config: config}
}

// getInterfaces returns the network interfaces to advertise on.
// Returns nil to use all interfaces.
func (a *Announcer) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Start registers the service. A second Start replaces the previous
// registration.
func (a *Announcer) Start(info Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Name,
		ServiceType,
		Domain,
		info.Port,
		encodeTXT(info),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register control service: %w", err)
	}

	a.server = server
	a.info = info
	return nil
}

// SetDevices refreshes the advertised control-point count.
func (a *Announcer) SetDevices(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil || a.info.Devices == n {
		return
	}
	a.info.Devices = n
	a.server.SetText(encodeTXT(a.info))
}

// Stop withdraws the advertisement.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// encodeTXT builds the TXT records for the advertised service.
func encodeTXT(info Info) []string {
	return []string{
		"instance=" + info.Instance,
		"version=" + info.Version,
		fmt.Sprintf("devices=%d", info.Devices),
	}
}
