// oriond is the launcher coordinator daemon.  It listens for the global
// hotkey, supervises the short-lived popup UI process, answers its
// search queries over a local socket, and keeps the configuration hot
// via a file watcher so that edits apply without a restart.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/grishmahat/orion/internal/action"
	"github.com/grishmahat/orion/internal/config"
	"github.com/grishmahat/orion/internal/hotkey"
	"github.com/grishmahat/orion/internal/ipc"
	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
	"github.com/grishmahat/orion/internal/search"
	"github.com/grishmahat/orion/internal/setup"
	"github.com/grishmahat/orion/internal/supervisor"
)

func main() {
	// ── First-run layout ────────────────────────────────────────────
	paths, err := setup.DefaultPaths()
	if err != nil {
		log.Fatalf("Failed to resolve config paths: %v", err)
	}
	if err := setup.Ensure(paths); err != nil {
		log.Fatalf("First-run setup failed: %v", err)
	}

	// ── Configuration ───────────────────────────────────────────────
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Printf("Config load warning (using defaults): %v", err)
		cfg = config.Default()
		cfg.SocketPath = paths.Socket
		cfg.LogFile = paths.Log
	}
	store := config.NewStore(cfg)

	// ── Logging ─────────────────────────────────────────────────────
	if err := logging.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Printf("Logging initialization warning: %v", err)
	}
	defer logging.Close()
	logging.Infof("Starting oriond…")

	// ── IPC server + popup supervisor ───────────────────────────────
	srv, err := ipc.NewServer(cfg.SocketPath)
	if err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	sup := supervisor.New(srv.Addr())
	resolver := search.NewResolver(paths.Bangs)
	registerHandlers(srv, store, sup, resolver, paths)

	// ── Global hotkey ───────────────────────────────────────────────
	det := hotkey.NewDetector()
	if err := bindHotkey(det, store.Snapshot(), sup); err != nil {
		log.Fatalf("Invalid hotkey configuration: %v", err)
	}
	if err := det.Attach(); err != nil {
		logging.Warnf("keyboard monitoring unavailable: %v", err)
	}

	// ── Run until signalled ─────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srv.Serve()
		return nil
	})
	g.Go(func() error {
		err := config.Watch(gctx, paths.Config, func() {
			reloadConfig(paths, store, det, sup)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logging.LogEvent("daemon", "started", fmt.Sprintf("socket=%s", srv.Addr()))
	<-gctx.Done()

	logging.Infof("Shutting down…")
	srv.Close()
	det.Close()
	if err := sup.StopPopup(); err != nil {
		logging.Warnf("popup shutdown: %v", err)
	}
	if err := g.Wait(); err != nil {
		logging.Warnf("shutdown: %v", err)
	}
	logging.LogEvent("daemon", "stopped", "")
}

// bindHotkey replaces the detector's bindings with the configured
// toggle combination.
func bindHotkey(det *hotkey.Detector, cfg *config.Config, sup *supervisor.Supervisor) error {
	mods, trigger, err := hotkey.ParseBinding(cfg.Hotkey.Modifiers, cfg.Hotkey.Key)
	if err != nil {
		return err
	}
	det.Clear()
	det.Register(mods, trigger, hotkey.ActionFunc(func() {
		togglePopup(sup)
	}))
	return nil
}

// togglePopup runs on every hotkey fire: one press opens the popup,
// the next closes it.
func togglePopup(sup *supervisor.Supervisor) {
	ctx, cancel := context.WithTimeout(context.Background(), ipc.Timeout)
	defer cancel()

	if sup.IsRunning() {
		if err := sup.StopPopup(); err != nil {
			logging.Errorf("popup stop: %v", err)
		}
		return
	}
	if err := sup.StartPopup(ctx); err != nil {
		logging.Errorf("popup start: %v", err)
		return
	}
	// Nudge the freshly started popup to pull current settings.
	if err := sup.SendMessage(ctx, &protocol.ConfigUpdate{}); err != nil {
		logging.Warnf("popup config push: %v", err)
	}
}

// reloadConfig re-reads the config file after the watcher reports a
// change. A broken file keeps the previous configuration live.
func reloadConfig(paths setup.Paths, store *config.Store, det *hotkey.Detector, sup *supervisor.Supervisor) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		logging.Warnf("config reload rejected: %v", err)
		return
	}
	store.Apply(cfg)
	if err := bindHotkey(det, cfg, sup); err != nil {
		logging.Warnf("config reload: hotkey rebind: %v", err)
	}
	if sup.IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), ipc.Timeout)
		defer cancel()
		if err := sup.SendMessage(ctx, &protocol.ConfigUpdate{}); err != nil {
			logging.Warnf("config reload: popup notify: %v", err)
		}
	}
	logging.LogEvent("config", "reloaded", paths.Config)
}

// ═══════════════════════════════════════════════════════════════════
// IPC message handlers
// ═══════════════════════════════════════════════════════════════════

func registerHandlers(srv *ipc.Server, store *config.Store, sup *supervisor.Supervisor, resolver *search.Resolver, paths setup.Paths) {
	srv.Handle(protocol.KindSearchQuery, func(m protocol.Message) protocol.Message {
		q, ok := m.(*protocol.SearchQuery)
		if !ok {
			return &protocol.Error{Text: "malformed search query"}
		}
		snap := store.Snapshot()
		if q.MaxResults <= 0 {
			q.MaxResults = snap.Search.MaxResults
		}
		return resolver.Resolve(*q, snap.CurrentProfileCommands())
	})

	srv.Handle(protocol.KindCommand, func(m protocol.Message) protocol.Message {
		cmd, ok := m.(*protocol.Command)
		if !ok {
			return &protocol.Error{Text: "malformed command"}
		}
		logging.LogEvent("ipc", "command", cmd.Name)
		if err := action.Run(cmd.Action); err != nil {
			return &protocol.Error{Text: err.Error()}
		}
		return nil
	})

	srv.Handle(protocol.KindRedirect, func(m protocol.Message) protocol.Message {
		r, ok := m.(*protocol.Redirect)
		if !ok {
			return &protocol.Error{Text: "malformed redirect"}
		}
		if err := action.Run(protocol.Action{Type: protocol.ActionOpenURL, Value: r.URL}); err != nil {
			return &protocol.Error{Text: err.Error()}
		}
		return nil
	})

	srv.Handle(protocol.KindConfigUpdate, func(m protocol.Message) protocol.Message {
		cfg, err := config.Load(paths.Config)
		if err != nil {
			return &protocol.Error{Text: fmt.Sprintf("config reload: %v", err)}
		}
		store.Apply(cfg)
		logging.LogEvent("config", "reloaded", "ipc request")
		return &protocol.ConfigUpdate{}
	})
}
