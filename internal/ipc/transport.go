// Package ipc moves protocol messages between the oriond coordinator and
// its local peers over a stream socket. A path-like address means a Unix
// domain socket; a host:port address means TCP on the loopback.
package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
)

const (
	// Timeout bounds every single send or receive on a connection.
	Timeout = 5 * time.Second
	// DialTimeout bounds the initial connect.
	DialTimeout = 5 * time.Second
)

var (
	// ErrTimeout reports a send or receive that exceeded Timeout.
	ErrTimeout = errors.New("ipc: operation timed out")
	// ErrClosed reports a peer that went away, possibly mid-frame.
	ErrClosed = errors.New("ipc: connection closed")
)

// Network decides the socket family from the address syntax: anything
// path-like binds a Unix domain socket, everything else is host:port.
func Network(addr string) string {
	if strings.ContainsAny(addr, `/\`) || strings.HasSuffix(addr, ".sock") {
		return "unix"
	}
	return "tcp"
}

// Conn is one framed, deadline-bounded message stream. Sends and
// receives on a single Conn are strictly ordered; no guarantee holds
// across distinct connections.
type Conn struct {
	conn    net.Conn
	timeout time.Duration
}

func newConn(c net.Conn) *Conn {
	return &Conn{conn: c, timeout: Timeout}
}

// Send frames and writes one message. Oversized payloads fail before
// any byte is written.
func (c *Conn) Send(m protocol.Message) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return mapErr(protocol.Send(c.conn, m))
}

// Receive reads exactly one framed message.
func (c *Conn) Receive() (protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	m, err := protocol.Receive(c.conn)
	return m, mapErr(err)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// mapErr folds transport-level failures into the package sentinels.
// Protocol errors pass through untouched.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return fmt.Errorf("%w: %v", ErrClosed, err)
	default:
		return err
	}
}

// Listener accepts framed-message connections on a local address.
type Listener struct {
	ln   net.Listener
	addr string
}

// Listen binds the address, removing a stale Unix socket from a
// previous run first. The umask is cleared around bind so the socket
// file keeps the mode we chmod it to.
func Listen(addr string) (*Listener, error) {
	network := Network(addr)

	var ln net.Listener
	var err error
	if network == "unix" {
		os.Remove(addr)
		oldMask := unix.Umask(0)
		ln, err = net.Listen("unix", addr)
		unix.Umask(oldMask)
		if err == nil {
			if cerr := os.Chmod(addr, 0o600); cerr != nil {
				logging.Warnf("ipc: could not chmod socket %s: %v", addr, cerr)
			}
		}
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("listen on %s (%s): %w", addr, network, err)
	}
	return &Listener{ln: ln, addr: addr}, nil
}

// Accept blocks until the next peer connects.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, mapErr(err)
	}
	return newConn(c), nil
}

// Addr returns the bound address string.
func (l *Listener) Addr() string { return l.addr }

func (l *Listener) Close() error { return l.ln.Close() }

// Dial connects to a coordinator at addr.
func Dial(addr string) (*Conn, error) {
	c, err := net.DialTimeout(Network(addr), addr, DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return newConn(c), nil
}

// Client is a lazily-dialed, mutex-guarded connection to the
// coordinator. A closed connection is dropped so the next call
// re-dials.
type Client struct {
	addr string

	mu   sync.Mutex
	conn *Conn
}

func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

func (c *Client) ensureLocked() (*Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := Dial(c.addr)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) Send(m protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, err := c.ensureLocked()
	if err != nil {
		return err
	}
	if err := conn.Send(m); err != nil {
		c.dropLocked(err)
		return err
	}
	return nil
}

func (c *Client) Receive() (protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, err := c.ensureLocked()
	if err != nil {
		return nil, err
	}
	m, err := conn.Receive()
	if err != nil {
		c.dropLocked(err)
		return nil, err
	}
	return m, nil
}

// dropLocked discards the connection after a fatal transport error so
// the next operation starts fresh.
func (c *Client) dropLocked(err error) {
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrTimeout) {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
