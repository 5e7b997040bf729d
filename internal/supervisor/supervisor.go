// Package supervisor owns the popup UI child process: starting it from
// a list of candidate executables, stopping and reaping it, and
// exchanging messages with it through a retried IPC client.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/grishmahat/orion/internal/ipc"
	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
	"github.com/grishmahat/orion/internal/retry"
)

// State is the popup process lifecycle phase.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrLaunch reports that no candidate executable could be spawned.
var ErrLaunch = errors.New("supervisor: could not launch popup from any candidate path")

const (
	defaultMaxAttempts  = 3
	defaultRetryDelay   = 500 * time.Millisecond
	defaultSettleDelay  = 500 * time.Millisecond
	defaultRestartDelay = 300 * time.Millisecond
)

// Process is a spawned popup, abstracted for testing.
type Process interface {
	Kill() error
	// Wait reaps the process and returns a printable exit status. The
	// status is meaningful even when the error is not nil.
	Wait() (string, error)
}

// Launcher spawns popup candidates, abstracted for testing.
type Launcher interface {
	Start(path, addr string) (Process, error)
}

// Peer is the IPC endpoint used to talk to the popup's socket peer.
type Peer interface {
	Send(protocol.Message) error
	Receive() (protocol.Message, error)
}

type execLauncher struct{}

func (execLauncher) Start(path, addr string) (Process, error) {
	cmd := exec.Command(path, addr)
	// Stdio stays detached; the popup logs through its own file.
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() (string, error) {
	err := p.cmd.Wait()
	if p.cmd.ProcessState != nil {
		return p.cmd.ProcessState.String(), err
	}
	return "unknown", err
}

// Supervisor tracks at most one live popup process. All operations go
// through its lock, so exactly zero or one child exists at any instant.
type Supervisor struct {
	mu       sync.Mutex
	state    State
	proc     Process
	launcher Launcher
	peer     Peer
	addr     string
	paths    []string

	maxAttempts  int
	retryDelay   time.Duration
	settleDelay  time.Duration
	restartDelay time.Duration
}

// New builds a supervisor that launches the popup with addr as its
// single argument and talks to it over a client dialed to that same
// address.
func New(addr string) *Supervisor {
	return &Supervisor{
		state:        Stopped,
		launcher:     execLauncher{},
		peer:         ipc.NewClient(addr),
		addr:         addr,
		paths:        candidatePaths(),
		maxAttempts:  defaultMaxAttempts,
		retryDelay:   defaultRetryDelay,
		settleDelay:  defaultSettleDelay,
		restartDelay: defaultRestartDelay,
	}
}

// candidatePaths lists where the popup executable may live, in the
// order they are tried.
func candidatePaths() []string {
	paths := []string{
		"orion-popup",            // in PATH
		"./orion-popup",          // working directory
		"./bin/orion-popup",      // build output
		"./dist/bin/orion-popup", // distribution layout
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "orion-popup"))
	}
	return paths
}

// StartPopup spawns the popup from the first candidate path that
// succeeds. A popup that is already running makes this a warning no-op.
func (s *Supervisor) StartPopup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		logging.Warnf("supervisor: popup already running")
		return nil
	}
	s.state = Starting

	var lastErr error
	for _, path := range s.paths {
		proc, err := s.launcher.Start(path, s.addr)
		if err != nil {
			logging.Debugf("supervisor: launch %s: %v", path, err)
			lastErr = err
			continue
		}
		logging.Infof("supervisor: popup started from %s", path)
		s.proc = proc

		// Let the process come up before anyone messages it.
		select {
		case <-ctx.Done():
			// Shutdown raced the launch; reap what we spawned.
			proc.Kill()
			proc.Wait()
			s.proc = nil
			s.state = Stopped
			return ctx.Err()
		case <-time.After(s.settleDelay):
		}

		s.state = Running
		return nil
	}

	s.state = Stopped
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, lastErr)
	}
	return ErrLaunch
}

// StopPopup terminates and reaps the tracked popup. A popup that is not
// running makes this a warning no-op. The state is Stopped once
// termination was attempted, whatever the wait outcome.
func (s *Supervisor) StopPopup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running || s.proc == nil {
		logging.Warnf("supervisor: popup not running")
		return nil
	}
	s.state = Stopping

	if err := s.proc.Kill(); err != nil {
		// Likely already exited; still reap below.
		logging.Warnf("supervisor: kill popup: %v", err)
	}

	status, err := s.proc.Wait()
	if err != nil {
		logging.Errorf("supervisor: wait for popup: %v (status %s)", err, status)
	} else {
		logging.Infof("supervisor: popup stopped with status %s", status)
	}

	s.proc = nil
	s.state = Stopped
	return nil
}

// RestartPopup stops the popup, waits the fixed gap, and starts it
// again. Failures of either half propagate.
func (s *Supervisor) RestartPopup(ctx context.Context) error {
	logging.Infof("supervisor: restarting popup")
	if err := s.StopPopup(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.restartDelay):
	}
	return s.StartPopup(ctx)
}

// IsRunning reports the current state without side effects.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Running
}

// SendMessage delivers one message to the popup's peer, retrying a
// bounded number of times with a constant delay.
func (s *Supervisor) SendMessage(ctx context.Context, m protocol.Message) error {
	err := retry.Do(ctx, s.maxAttempts, s.retryDelay, func() error {
		return s.peer.Send(m)
	})
	if err != nil {
		return fmt.Errorf("send %s to popup: %w", m.Kind(), err)
	}
	return nil
}

// ReceiveMessage reads one message from the popup's peer with the same
// bounded retry.
func (s *Supervisor) ReceiveMessage(ctx context.Context) (protocol.Message, error) {
	var msg protocol.Message
	err := retry.Do(ctx, s.maxAttempts, s.retryDelay, func() error {
		var rerr error
		msg, rerr = s.peer.Receive()
		return rerr
	})
	if err != nil {
		return nil, fmt.Errorf("receive from popup: %w", err)
	}
	return msg, nil
}
