package action

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grishmahat/orion/internal/protocol"
)

type mockRunner struct {
	name string
	args []string
	err  error
}

func (m *mockRunner) Start(name string, args ...string) error {
	m.name = name
	m.args = args
	return m.err
}

func withMockRunner(t *testing.T) *mockRunner {
	t.Helper()
	m := &mockRunner{}
	old := runner
	runner = m
	t.Cleanup(func() { runner = old })
	return m
}

func TestRunOpenURL(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("opener argv is platform specific")
	}
	m := withMockRunner(t)

	require.NoError(t, Run(protocol.Action{Type: protocol.ActionOpenURL, Value: "https://example.com"}))
	assert.Equal(t, "xdg-open", m.name)
	assert.Equal(t, []string{"https://example.com"}, m.args)
}

func TestRunOpenFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("opener argv is platform specific")
	}
	m := withMockRunner(t)

	require.NoError(t, Run(protocol.Action{Type: protocol.ActionOpenFile, Value: "/tmp/notes.txt"}))
	assert.Equal(t, "xdg-open", m.name)
	assert.Equal(t, []string{"/tmp/notes.txt"}, m.args)
}

func TestRunExecuteCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell argv is platform specific")
	}
	m := withMockRunner(t)

	require.NoError(t, Run(protocol.Action{Type: protocol.ActionExecuteCommand, Value: "echo hi | wc -c"}))
	assert.Equal(t, "sh", m.name)
	assert.Equal(t, []string{"-c", "echo hi | wc -c"}, m.args)
}

func TestRunCustomIsSkipped(t *testing.T) {
	m := withMockRunner(t)

	require.NoError(t, Run(protocol.Action{Type: protocol.ActionCustom, Value: "anything"}))
	assert.Empty(t, m.name, "custom actions launch nothing")
}

func TestRunUnknownType(t *testing.T) {
	withMockRunner(t)
	assert.Error(t, Run(protocol.Action{Type: "teleport", Value: "home"}))
}

func TestRunPropagatesLaunchError(t *testing.T) {
	m := withMockRunner(t)
	m.err = errors.New("no such opener")

	assert.Error(t, Run(protocol.Action{Type: protocol.ActionOpenURL, Value: "https://example.com"}))
}
