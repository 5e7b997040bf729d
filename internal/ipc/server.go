package ipc

import (
	"errors"
	"time"

	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
)

// receiveRetryDelay spaces out receive attempts after a transient
// failure so a persistently broken peer cannot spin the loop.
const receiveRetryDelay = 100 * time.Millisecond

// HandlerFunc processes one inbound message and returns the reply to
// send on the same connection, or nil for no reply.
type HandlerFunc func(protocol.Message) protocol.Message

// Server accepts connections and dispatches messages by kind. A
// handler failure never takes the server down; it is logged and the
// loop continues.
type Server struct {
	ln       *Listener
	handlers map[protocol.Kind]HandlerFunc
}

// NewServer binds the address and returns a server with an empty
// handler table.
func NewServer(addr string) (*Server, error) {
	ln, err := Listen(addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		ln:       ln,
		handlers: make(map[protocol.Kind]HandlerFunc),
	}, nil
}

// Handle registers the handler for a message kind. Register everything
// before calling Serve.
func (s *Server) Handle(kind protocol.Kind, h HandlerFunc) {
	s.handlers[kind] = h
}

// Addr returns the bound address string.
func (s *Server) Addr() string { return s.ln.Addr() }

// Serve accepts connections until the listener closes. Run in a
// goroutine.
func (s *Server) Serve() {
	logging.Infof("ipc: listening on %s", s.Addr())
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return
			}
			logging.Warnf("ipc: accept: %v", err)
			time.Sleep(receiveRetryDelay)
			continue
		}
		go s.serveConn(conn)
	}
}

// Close tears down the listener. In-flight connections finish their
// current exchange.
func (s *Server) Close() error {
	return s.ln.Close()
}

func (s *Server) serveConn(conn *Conn) {
	defer conn.Close()

	for {
		msg, err := conn.Receive()
		if err != nil {
			switch {
			case errors.Is(err, ErrClosed):
				return
			case errors.Is(err, ErrTimeout):
				// Idle peer holding the connection open. Keep waiting.
				continue
			case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrTooLarge):
				logging.Warnf("ipc: dropping bad frame: %v", err)
				if serr := conn.Send(&protocol.Error{Text: err.Error()}); serr != nil {
					return
				}
				time.Sleep(receiveRetryDelay)
				continue
			default:
				logging.Warnf("ipc: receive: %v", err)
				time.Sleep(receiveRetryDelay)
				continue
			}
		}

		h, ok := s.handlers[msg.Kind()]
		if !ok {
			logging.Warnf("ipc: no handler for %s", msg.Kind())
			if serr := conn.Send(&protocol.Error{Text: "unsupported message kind: " + string(msg.Kind())}); serr != nil {
				return
			}
			continue
		}

		logging.LogEvent("ipc", "request", string(msg.Kind()))
		reply := h(msg)
		if reply == nil {
			continue
		}
		if err := conn.Send(reply); err != nil {
			logging.Warnf("ipc: reply %s: %v", reply.Kind(), err)
			return
		}
	}
}
