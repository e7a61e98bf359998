// Command kasa-server discovers, tracks, and controls TP-Link Kasa smart
// plugs and switches on the local network, exposing named control points
// over HTTP.
//
// It offers:
//   - UDP broadcast discovery with automatic adoption of new devices
//   - A command/confirm/retry state machine per control point
//   - Pulsed (time-bounded) activations
//   - A JSON configuration document persisted across runs
//   - A CBOR event log and Prometheus metrics
//   - mDNS advertising of the control surface
//
// Usage:
//
//	kasa-server [flags]
//
// Flags:
//
//	-port int          HTTP control port (default 8217)
//	-config string     Device configuration path (default "/etc/house/kasa.json")
//	-events string     CBOR event-log path (empty disables file logging)
//	-options string    YAML options file path
//	-announce          Advertise the control surface via mDNS (default true)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run with defaults
//	kasa-server
//
//	# Local configuration, event log, no mDNS
//	kasa-server -config ./kasa.json -events ./kasa.events -announce=false
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/housekasa/kasa-go/pkg/announce"
	"github.com/housekasa/kasa-go/pkg/config"
	"github.com/housekasa/kasa-go/pkg/device"
	"github.com/housekasa/kasa-go/pkg/log"
	"github.com/housekasa/kasa-go/pkg/metrics"
	"github.com/housekasa/kasa-go/pkg/transport"
)

// Version information - set at build time via ldflags
var (
	Version   = "1.0.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	port        = flag.Int("port", 8217, "HTTP control port")
	configPath  = flag.String("config", "/etc/house/kasa.json", "Device configuration path")
	eventsPath  = flag.String("events", "", "CBOR event-log path (empty disables file logging)")
	optionsPath = flag.String("options", "", "YAML options file path")
	doAnnounce  = flag.Bool("announce", true, "Advertise the control surface via mDNS")
	mdnsIface   = flag.String("interface", "", "Network interface for mDNS advertising")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("kasa-server %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	if *optionsPath != "" {
		opts, err := loadOptions(*optionsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		applyOptions(opts)
	}

	tracer := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(tracer)

	instance := uuid.NewString()
	host, _ := os.Hostname()

	// Event sink: diagnostics always, file log when configured.
	loggers := []log.Logger{log.NewSlogAdapter(tracer)}
	var fileLog *log.FileLogger
	if *eventsPath != "" {
		var err error
		fileLog, err = log.NewFileLogger(*eventsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open event log: %v\n", err)
			return 1
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}
	events := log.NewMultiLogger(loggers...)

	registry := prometheus.NewRegistry()
	instruments := metrics.New(registry)

	udp, err := transport.NewUDP(tracer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer udp.Close()

	manager := device.NewManager(device.Options{
		Sender:   udp,
		Events:   events,
		Tracer:   tracer,
		Metrics:  instruments,
		Instance: instance,
	})

	store := config.NewStore(*configPath)
	doc, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	manager.Refresh(doc)
	events.Log(log.Event{
		Timestamp: time.Now(),
		Instance:  instance,
		Category:  log.CategorySystem,
		Subject:   store.Path(),
		Action:    log.ActionConfigLoad,
	})

	udp.Start(manager.HandleDatagram)

	var announcer *announce.Announcer
	if *doAnnounce {
		cfg := announce.DefaultConfig()
		cfg.Interface = *mdnsIface
		announcer = announce.New(cfg)
		err := announcer.Start(announce.Info{
			Name:     host,
			Port:     *port,
			Instance: instance,
			Version:  Version,
			Devices:  manager.Count(),
		})
		if err != nil {
			tracer.Warn("mDNS advertising unavailable", "error", err)
			announcer = nil
		} else {
			defer announcer.Stop()
		}
	}

	srv := NewServer(ServerConfig{
		Port:     *port,
		Host:     host,
		Instance: instance,
		Version:  Version,
	}, manager, store, events, registry)

	events.Log(log.Event{
		Timestamp: time.Now(),
		Instance:  instance,
		Category:  log.CategoryService,
		Subject:   "kasa-server",
		Action:    log.ActionStart,
		Detail:    "VERSION " + Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpErr := make(chan error, 1)
	go func() {
		tracer.Info("control surface listening", "port", *port)
		httpErr <- srv.ListenAndServe()
	}()

	tick(ctx, manager, store, events, announcer, instance, httpErr, tracer)

	events.Log(log.Event{
		Timestamp: time.Now(),
		Instance:  instance,
		Category:  log.CategoryService,
		Subject:   "kasa-server",
		Action:    log.ActionStop,
	})
	if err := srv.Shutdown(5 * time.Second); err != nil {
		tracer.Warn("HTTP shutdown", "error", err)
	}
	return 0
}

// tick drives the device manager once per second until the context is
// cancelled or the HTTP server fails, persisting configuration deltas
// raised by discovery.
func tick(ctx context.Context, manager *device.Manager, store *config.Store,
	events log.Logger, announcer *announce.Announcer, instance string,
	httpErr <-chan error, tracer *slog.Logger) {

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-httpErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				tracer.Error("HTTP server failed", "error", err)
			}
			return
		case now := <-ticker.C:
			manager.Periodic(now)
			if manager.Changed() {
				if err := store.Save(manager.LiveConfig()); err != nil {
					tracer.Warn("cannot persist configuration", "error", err)
				} else {
					events.Log(log.Event{
						Timestamp: now,
						Instance:  instance,
						Category:  log.CategorySystem,
						Subject:   store.Path(),
						Action:    log.ActionConfigSave,
						Detail:    "AUTODETECT",
					})
				}
				if announcer != nil {
					announcer.SetDevices(manager.Count())
				}
			}
		}
	}
}

// applyOptions merges options-file values under explicitly passed flags.
func applyOptions(opts *Options) {
	passed := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	if opts.Port != 0 && !passed["port"] {
		*port = opts.Port
	}
	if opts.Config != "" && !passed["config"] {
		*configPath = opts.Config
	}
	if opts.EventLog != "" && !passed["events"] {
		*eventsPath = opts.EventLog
	}
	if opts.LogLevel != "" && !passed["log-level"] {
		*logLevel = opts.LogLevel
	}
	if opts.Announce != nil && !passed["announce"] {
		*doAnnounce = *opts.Announce
	}
	if opts.Interface != "" && !passed["interface"] {
		*mdnsIface = opts.Interface
	}
}

// parseLevel maps a level name to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
