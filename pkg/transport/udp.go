package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// Handler receives one datagram with the peer it came from.
// Handlers run on the read pump goroutine and must not block.
type Handler func(data []byte, peer *net.UDPAddr)

// UDP is a broadcast-capable datagram socket with a read pump.
// Send errors are logged and swallowed; only socket creation fails hard.
type UDP struct {
	conn   *net.UDPConn
	logger *slog.Logger

	mu      sync.Mutex
	handler Handler

	wg     sync.WaitGroup
	closed bool
}

// NewUDP opens the socket on an ephemeral local port and enables
// SO_BROADCAST. The returned transport does not deliver datagrams until
// Start is called.
func NewUDP(logger *slog.Logger) (*UDP, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("transport: open UDP socket: %w", err)
	}

	if err := setBroadcast(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: enable broadcast: %w", err)
	}

	logger.Info("UDP socket open", "local", conn.LocalAddr().String())
	return &UDP{conn: conn, logger: logger}, nil
}

// setBroadcast sets SO_BROADCAST on the underlying socket.
func setBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// LocalAddr returns the bound local address.
func (u *UDP) LocalAddr() *net.UDPAddr {
	return u.conn.LocalAddr().(*net.UDPAddr)
}

// Start launches the read pump, delivering every received datagram to
// handler. Must be called at most once.
func (u *UDP) Start(handler Handler) {
	u.mu.Lock()
	u.handler = handler
	u.mu.Unlock()

	u.wg.Add(1)
	go u.readLoop()
}

// readLoop receives datagrams until the socket is closed.
func (u *UDP) readLoop() {
	defer u.wg.Done()

	buf := make([]byte, 2048)
	for {
		n, peer, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			u.logger.Warn("UDP receive error", "error", err)
			continue
		}

		u.mu.Lock()
		handler := u.handler
		u.mu.Unlock()
		if handler == nil {
			continue
		}

		// The handler keeps no reference past its return, but the next
		// read reuses buf, so hand over a copy.
		data := make([]byte, n)
		copy(data, buf[:n])
		handler(data, peer)
	}
}

// Send transmits one datagram, fire and forget. Errors are logged and
// reported but the transport stays usable.
func (u *UDP) Send(addr *net.UDPAddr, payload []byte) error {
	if _, err := u.conn.WriteToUDP(payload, addr); err != nil {
		u.logger.Warn("UDP send error", "peer", addr.String(), "error", err)
		return err
	}
	return nil
}

// Close shuts down the socket and waits for the read pump to exit.
func (u *UDP) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	u.mu.Unlock()

	err := u.conn.Close()
	u.wg.Wait()
	return err
}
