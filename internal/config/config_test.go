package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grishmahat/orion/internal/protocol"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Profiles[0].Commands = []Command{
		{
			Name:        "Terminal",
			Description: "Open a terminal",
			Action:      Action{Type: "execute_command", Value: "alacritty"},
			Keywords:    []string{"term", "shell"},
		},
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cases := map[string]string{
		"bad toml":      "not = [valid",
		"bad max":       "current_profile = \"Default\"\n[search]\nmax_results = 0\nsearch_delay_ms = 200\n",
		"bad delay":     "current_profile = \"Default\"\n[search]\nmax_results = 10\nsearch_delay_ms = 50\n",
		"empty profile": "current_profile = \"\"\n[search]\nmax_results = 10\nsearch_delay_ms = 200\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestCurrentProfileCommands(t *testing.T) {
	cfg := Default()
	cfg.Profiles = []Profile{
		{Name: "Work", Commands: []Command{{Name: "Editor", Action: Action{Type: "execute_command", Value: "code"}}}},
		{Name: "Default"},
	}
	cfg.CurrentProfile = "Work"

	cmds := cfg.CurrentProfileCommands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "Editor", cmds[0].Name)
	assert.Equal(t, protocol.ActionExecuteCommand, cmds[0].Action.Type)

	cfg.CurrentProfile = "Missing"
	assert.Nil(t, cfg.CurrentProfileCommands())
}

func TestProfileManagement(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.AddProfile("Gaming"))
	assert.Error(t, cfg.AddProfile("Gaming"), "duplicate names rejected")
	assert.Error(t, cfg.AddProfile(""))

	assert.Error(t, cfg.RemoveProfile("Default"), "current profile stays")
	require.NoError(t, cfg.RemoveProfile("Gaming"))
	assert.Len(t, cfg.Profiles, 1)
}

func TestUpdateSetting(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.UpdateSetting("max_results", 25))
	assert.Equal(t, 25, cfg.Search.MaxResults)

	assert.Error(t, cfg.UpdateSetting("max_results", 500))
	assert.Equal(t, 25, cfg.Search.MaxResults, "rejected value is rolled back")
	assert.Error(t, cfg.UpdateSetting("unknown", 1))
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore(Default())

	snap := store.Snapshot()
	snap.CurrentProfile = "Mutated"
	assert.Equal(t, "Default", store.Snapshot().CurrentProfile, "snapshots are copies")

	next := Default()
	next.Search.MaxResults = 42
	store.Apply(next)
	assert.Equal(t, 42, store.Snapshot().Search.MaxResults)
}

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("a = 2\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reported the write")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go Watch(ctx, path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-changed:
		t.Fatal("sibling file write should not trigger the callback")
	case <-time.After(500 * time.Millisecond):
	}
}
