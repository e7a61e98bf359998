// Command kasa is a standalone console for TP-Link Kasa devices: it
// sends one wire message and prints every reply, without going through
// the service. Useful for network debugging and device identification.
//
// Usage:
//
//	kasa [flags] <command> [args]
//
// Commands:
//
//	query          Probe for devices and print their sysinfo
//	on | off       Switch the relay
//	alias <name>   Rename the device (requires -target)
//
// Flags:
//
//	-target string   Device IP (default: all-interfaces broadcast)
//	-device string   Device ID for child-outlet commands
//	-child string    Child outlet ID (requires -device)
//	-dimmer          Use the dimmer switch command (HS220)
//	-wait duration   How long to collect replies (default 2s)
//	-i               Interactive console
//
// Examples:
//
//	# Find every Kasa device on the local network
//	kasa query
//
//	# Switch a plug off
//	kasa -target 192.168.1.10 off
//
//	# Switch one outlet of a power strip
//	kasa -target 192.168.1.11 -device 8006AA20 -child 01 on
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/housekasa/kasa-go/pkg/wire"
)

var (
	target      = flag.String("target", "", "Device IP (default: all-interfaces broadcast)")
	deviceID    = flag.String("device", "", "Device ID for child-outlet commands")
	childID     = flag.String("child", "", "Child outlet ID (requires -device)")
	dimmer      = flag.Bool("dimmer", false, "Use the dimmer switch command (HS220)")
	wait        = flag.Duration("wait", 2*time.Second, "How long to collect replies")
	interactive = flag.Bool("i", false, "Interactive console")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	tracer := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	addr, err := resolveTarget(*target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := NewClient(tracer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close()

	if *interactive {
		return runConsole(client, addr)
	}

	payload, err := composePayload(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		return 1
	}

	if err := client.Send(addr, payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Replies print as they arrive on the read pump.
	time.Sleep(*wait)
	return 0
}

// resolveTarget turns the -target flag into a device address, defaulting
// to the all-interfaces broadcast.
func resolveTarget(target string) (*net.UDPAddr, error) {
	if target == "" {
		return &net.UDPAddr{IP: net.IPv4bcast, Port: wire.KasaPort}, nil
	}
	ip := net.ParseIP(target)
	if ip == nil {
		ips, err := net.LookupIP(target)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve target %s: %w", target, err)
		}
		for _, candidate := range ips {
			if v4 := candidate.To4(); v4 != nil {
				ip = v4
				break
			}
		}
		if ip == nil {
			return nil, fmt.Errorf("no IPv4 address for target %s", target)
		}
	}
	return &net.UDPAddr{IP: ip, Port: wire.KasaPort}, nil
}

// composePayload builds the wire message for one console command.
func composePayload(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command")
	}

	switch args[0] {
	case "query":
		return wire.SenseRequest(), nil

	case "on", "off":
		on := args[0] == "on"
		if *dimmer {
			return wire.SetDimmerRequest(on), nil
		}
		if *childID != "" && *deviceID == "" {
			return nil, fmt.Errorf("-child requires -device")
		}
		return wire.SetRelayRequest(*deviceID, *childID, on), nil

	case "alias":
		if len(args) < 2 {
			return nil, fmt.Errorf("alias requires a name")
		}
		if *target == "" {
			return nil, fmt.Errorf("alias requires -target")
		}
		return wire.SetAliasRequest(args[1]), nil

	default:
		return nil, fmt.Errorf("unknown command: %s", args[0])
	}
}
