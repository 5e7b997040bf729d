// Package action executes the side effects attached to search results:
// launching programs, opening files and URLs through the desktop
// opener.
package action

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
)

// Runner abstracts process launch so tests can capture argv.
type Runner interface {
	Start(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap in the background so finished children don't linger.
	go cmd.Wait()
	return nil
}

var runner Runner = execRunner{}

// Run performs the action. Launched processes are not waited on; the
// coordinator fires and forgets.
func Run(a protocol.Action) error {
	logging.LogEvent("action", string(a.Type), a.Value)
	switch a.Type {
	case protocol.ActionOpenURL, protocol.ActionOpenFile:
		return open(a.Value)
	case protocol.ActionExecuteCommand:
		return shell(a.Value)
	case protocol.ActionCustom:
		logging.Warnf("custom action not handled: %s", a.Value)
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// open hands a URL or path to the platform opener.
func open(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return runner.Start("open", target)
	case "windows":
		return runner.Start("cmd", "/C", "start", "", target)
	default:
		return runner.Start("xdg-open", target)
	}
}

// shell runs a command line through the system shell.
func shell(line string) error {
	if runtime.GOOS == "windows" {
		return runner.Start("cmd", "/C", line)
	}
	return runner.Start("sh", "-c", line)
}
