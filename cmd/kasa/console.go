package main

import (
	"fmt"
	"net"
	"strings"

	"github.com/chzyer/readline"

	"github.com/housekasa/kasa-go/pkg/wire"
)

// runConsole runs the interactive command loop. Replies stream in on the
// read pump as they arrive, so there is no reply window to manage.
func runConsole(client *Client, addr *net.UDPAddr) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "kasa> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("failed to create readline: %v\n", err)
		return 1
	}
	defer rl.Close()

	// Route inbound replies through readline so they don't mangle the
	// prompt.
	client.SetOutput(rl.Stdout())

	printHelp(rl)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return 0
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			printHelp(rl)

		case "target":
			if len(args) == 0 {
				fmt.Fprintf(rl.Stdout(), "target: %s\n", addr.IP)
				continue
			}
			next, err := resolveTarget(args[0])
			if err != nil {
				fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
				continue
			}
			addr = next

		case "query":
			send(rl, client, addr, wire.SenseRequest())

		case "on", "off":
			on := cmd == "on"
			switch len(args) {
			case 0:
				send(rl, client, addr, wire.SetRelayRequest("", "", on))
			case 2:
				send(rl, client, addr, wire.SetRelayRequest(args[0], args[1], on))
			default:
				fmt.Fprintf(rl.Stdout(), "Usage: %s [device-id child-id]\n", cmd)
			}

		case "dim":
			if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
				fmt.Fprintln(rl.Stdout(), "Usage: dim on|off")
				continue
			}
			send(rl, client, addr, wire.SetDimmerRequest(args[0] == "on"))

		case "alias":
			if len(args) != 1 {
				fmt.Fprintln(rl.Stdout(), "Usage: alias <name>")
				continue
			}
			send(rl, client, addr, wire.SetAliasRequest(args[0]))

		case "quit", "exit", "q":
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return 0

		default:
			fmt.Fprintf(rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

// send transmits one payload toward the current target.
func send(rl *readline.Instance, client *Client, addr *net.UDPAddr, payload []byte) {
	fmt.Fprintf(rl.Stdout(), "-> %s: %s\n", addr.IP, payload)
	if err := client.Send(addr, payload); err != nil {
		fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
	}
}

func printHelp(rl *readline.Instance) {
	fmt.Fprintln(rl.Stdout(), `
Kasa Console Commands:
  Probing:
    query                     - Probe the target (broadcast by default)

  Control:
    on | off                  - Switch the relay at the target
    on <device-id> <child-id> - Switch one outlet of a power strip
    dim on|off                - Switch a dimmer model (HS220)
    alias <name>              - Rename the target device

  Session:
    target [ip]               - Show or change the target address
    help                      - Show this help
    quit                      - Exit`)
}
