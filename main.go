package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"macrorec/config"
	"macrorec/storage"
	"macrorec/systray"
	"macrorec/web"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	configPath, _ := config.ConfigPath()
	slog.Info("Configuration loaded", "path", configPath)

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		slog.Error("Failed to resolve data directory", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(dataDir)
	if err != nil {
		slog.Error("Failed to open recording store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	agent := NewAgent(cfg, db)

	// Web control surface
	if cfg.Web.Enabled {
		server := web.NewServer(agent, cfg.Web.Port)
		agent.OnStatus = server.BroadcastStatus
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Web server error", "error", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// System tray; quitting from the menu shuts the agent down too.
	tray := systray.NewSystrayManager(cfg.Web.Port, nil)
	tray.ToggleRecord = func() {
		st := agent.StatusSnapshot()
		if st.Recording {
			if _, err := agent.StopRecording(); err != nil {
				slog.Error("Failed to stop recording", "error", err)
			}
		} else if err := agent.StartRecording(); err != nil {
			slog.Error("Failed to start recording", "error", err)
		}
	}
	tray.ReplayLast = func() {
		if err := agent.ReplayLatest(); err != nil {
			slog.Error("Failed to replay", "error", err)
		}
	}
	go tray.Run()
	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
			tray.Stop()
		}
	}()

	// Run agent
	if err := agent.Run(ctx); err != nil {
		slog.Error("Agent error", "error", err)
		os.Exit(1)
	}

	slog.Info("MacroRec stopped")
}
