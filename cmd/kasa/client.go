package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/housekasa/kasa-go/pkg/transport"
	"github.com/housekasa/kasa-go/pkg/wire"
)

// Client is a thin console wrapper around the UDP transport: it sends
// obfuscated payloads and prints every decoded reply with its sender.
type Client struct {
	udp *transport.UDP

	mu  sync.Mutex
	out io.Writer
}

// NewClient opens the socket and starts printing replies.
func NewClient(tracer *slog.Logger) (*Client, error) {
	udp, err := transport.NewUDP(tracer)
	if err != nil {
		return nil, err
	}
	c := &Client{udp: udp, out: os.Stdout}
	udp.Start(c.handle)
	return c, nil
}

// SetOutput redirects reply printing, e.g. to a readline-coordinated
// writer in interactive mode.
func (c *Client) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

// handle prints one decoded reply.
func (c *Client) handle(data []byte, peer *net.UDPAddr) {
	plain := wire.Unscramble(data)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s: %s\n", peer.IP, plain)
}

// Send obfuscates and transmits one payload.
func (c *Client) Send(target *net.UDPAddr, plain []byte) error {
	data, err := wire.Scramble(plain)
	if err != nil {
		return err
	}
	return c.udp.Send(target, data)
}

// Close shuts the socket down.
func (c *Client) Close() error {
	return c.udp.Close()
}
