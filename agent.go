package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"macrorec/config"
	"macrorec/platform"
	"macrorec/recording"
	"macrorec/replay"
	"macrorec/storage"
	"macrorec/web"
)

// Agent coordinates hotkey toggles, input capture, the recording store,
// and replay. It owns the single recording state and the hook
// capability, and is the command boundary the web and tray surfaces
// call into.
type Agent struct {
	cfg      *config.Config
	db       *storage.DB
	state    *recording.State
	hooks    platform.Hooks
	injector platform.Injector
	hotkey   platform.Hotkey
	engine   *replay.Engine

	// OnStatus, if set, is notified after every state transition.
	OnStatus func(web.Status)

	mu        sync.Mutex
	installed bool
	playing   bool
	progress  float64
	cancel    context.CancelFunc
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config, db *storage.DB) *Agent {
	injector := platform.NewInjector()
	return &Agent{
		cfg:      cfg,
		db:       db,
		state:    recording.NewState(),
		hooks:    platform.NewHooks(),
		injector: injector,
		hotkey:   platform.NewHotkey(),
		engine:   replay.NewEngine(injector),
	}
}

// Run installs the capture hooks, wires the hotkey toggles, and blocks
// until the context is cancelled. The hooks are uninstalled on every
// exit path.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.InstallHooks(); err != nil {
		return err
	}
	defer func() {
		if err := a.UninstallHooks(); err != nil {
			slog.Error("Failed to uninstall hooks", "error", err)
		}
	}()

	combos, err := a.hotkeyCombos()
	if err != nil {
		return err
	}

	events, err := a.hotkey.Listen(ctx, combos)
	if err != nil {
		return fmt.Errorf("failed to start hotkey listener: %w", err)
	}

	slog.Info("MacroRec started",
		"record_hotkey", a.cfg.Hotkeys.RecordToggle,
		"replay_hotkey", a.cfg.Hotkeys.ReplayToggle)

	for {
		select {
		case <-ctx.Done():
			a.StopReplay()
			return nil

		case evt := <-events:
			switch evt.Name {
			case "record":
				a.toggleRecording()
			case "replay":
				a.toggleReplay()
			}
		}
	}
}

func (a *Agent) hotkeyCombos() (map[string]platform.KeyCombo, error) {
	combos := make(map[string]platform.KeyCombo, 2)
	for name, raw := range map[string]string{
		"record": a.cfg.Hotkeys.RecordToggle,
		"replay": a.cfg.Hotkeys.ReplayToggle,
	} {
		combo, err := config.ParseHotkey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s hotkey: %w", name, err)
		}
		vk, err := platform.VKCode(combo.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s hotkey: %w", name, err)
		}
		combos[name] = platform.KeyCombo{
			Ctrl:  combo.Ctrl,
			Shift: combo.Shift,
			Alt:   combo.Alt,
			Win:   combo.Win,
			Key:   vk,
		}
	}
	return combos, nil
}

// InstallHooks registers the global capture hooks.
func (a *Agent) InstallHooks() error {
	if err := a.hooks.Install(a.state); err != nil {
		return err
	}
	a.mu.Lock()
	a.installed = true
	a.mu.Unlock()
	a.notify()
	return nil
}

// UninstallHooks removes the capture hooks. Idempotent.
func (a *Agent) UninstallHooks() error {
	if err := a.hooks.Uninstall(); err != nil {
		return err
	}
	a.mu.Lock()
	a.installed = false
	a.mu.Unlock()
	a.notify()
	return nil
}

// StartRecording begins a capture session. Starting while already
// recording is a no-op; the in-progress session keeps its events.
func (a *Agent) StartRecording() error {
	a.mu.Lock()
	installed := a.installed
	a.mu.Unlock()
	if !installed {
		return errors.New("hooks are not installed")
	}

	a.state.Start()
	slog.Info("Recording started")
	a.notify()
	return nil
}

// StopRecording ends the capture session and persists the captured
// events. A session that captured nothing is not stored.
func (a *Agent) StopRecording() (*storage.Recording, error) {
	events := a.state.Stop()
	a.notify()

	if len(events) == 0 {
		slog.Info("Recording stopped", "events", 0)
		return nil, nil
	}

	name := fmt.Sprintf("Macro %s", time.Now().Format("2006-01-02 15:04:05"))
	rec, err := a.db.SaveRecording(name, events)
	if err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	slog.Info("Recording stopped", "events", len(events), "id", rec.ID,
		"duration_ms", rec.DurationMS)
	return rec, nil
}

// LoadRecording loads a stored recording into the replay engine.
func (a *Agent) LoadRecording(id string) error {
	rec, err := a.db.GetRecording(id)
	if err != nil {
		return err
	}
	return a.loadEvents(rec.Events)
}

// LoadRecordingFile loads a recording document from disk into the
// replay engine. The read happens outside the agent lock.
func (a *Agent) LoadRecordingFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return errors.New("replay in progress")
	}
	if err := a.engine.Load(data); err != nil {
		return err
	}
	a.progress = 0
	return nil
}

func (a *Agent) loadEvents(events []recording.RecordedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return errors.New("replay in progress")
	}
	a.engine.SetEvents(events)
	a.progress = 0
	return nil
}

// StartReplay starts dispatching the loaded recording at the given
// speed multiplier on a driver goroutine. Only one replay runs at a
// time.
func (a *Agent) StartReplay(speed float64) error {
	a.mu.Lock()

	if a.playing {
		a.mu.Unlock()
		return errors.New("replay already in progress")
	}
	if a.engine.Len() == 0 {
		a.mu.Unlock()
		return errors.New("no recording loaded")
	}
	if err := a.engine.Start(speed); err != nil {
		a.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.playing = true
	a.progress = 0
	a.cancel = cancel

	driver := replay.NewDriver(a.engine)
	driver.OnProgress = func(pct float64) {
		a.mu.Lock()
		a.progress = pct
		a.mu.Unlock()
		a.notify()
	}

	total := a.engine.Len()
	a.mu.Unlock()

	go func() {
		defer cancel()
		err := driver.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Replay aborted", "error", err)
		} else {
			slog.Info("Replay finished")
		}

		a.mu.Lock()
		a.playing = false
		a.cancel = nil
		a.mu.Unlock()
		a.notify()
	}()

	slog.Info("Replay started", "speed", speed, "events", total)
	a.notify()
	return nil
}

// StopReplay cancels an in-progress replay. No-op when idle.
func (a *Agent) StopReplay() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ReplayProgress returns replay progress as a percentage.
func (a *Agent) ReplayProgress() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

// Recordings lists stored recordings, newest first.
func (a *Agent) Recordings(limit, offset int) ([]storage.Recording, error) {
	return a.db.ListRecordings(limit, offset)
}

// DeleteRecording removes a stored recording.
func (a *Agent) DeleteRecording(id string) error {
	return a.db.DeleteRecording(id)
}

// Stats returns aggregate statistics over the stored recordings.
func (a *Agent) Stats() (*storage.OverallStats, error) {
	return a.db.GetOverallStats()
}

// DailyStats returns per-day recording statistics for the last N days.
func (a *Agent) DailyStats(days int) ([]storage.DailyStats, error) {
	return a.db.GetDailyStats(days)
}

// StatusSnapshot returns the agent's current state.
func (a *Agent) StatusSnapshot() web.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return web.Status{
		HooksInstalled: a.installed,
		Recording:      a.state.IsRecording(),
		Playing:        a.playing,
		Progress:       a.progress,
		LoadedEvents:   a.engine.Len(),
	}
}

// toggleRecording flips the recording session on hotkey press.
func (a *Agent) toggleRecording() {
	if a.state.IsRecording() {
		if _, err := a.StopRecording(); err != nil {
			slog.Error("Failed to stop recording", "error", err)
		}
		return
	}
	if err := a.StartRecording(); err != nil {
		slog.Error("Failed to start recording", "error", err)
	}
}

// toggleReplay replays the latest stored recording, or stops the
// running replay.
func (a *Agent) toggleReplay() {
	a.mu.Lock()
	playing := a.playing
	a.mu.Unlock()

	if playing {
		a.StopReplay()
		return
	}
	if err := a.ReplayLatest(); err != nil {
		slog.Error("Failed to replay", "error", err)
	}
}

// ReplayLatest loads the most recent stored recording and replays it at
// the configured speed.
func (a *Agent) ReplayLatest() error {
	rec, err := a.db.LatestRecording()
	if err != nil {
		return err
	}
	if err := a.loadEvents(rec.Events); err != nil {
		return err
	}
	return a.StartReplay(a.cfg.Replay.Speed)
}

func (a *Agent) notify() {
	if a.OnStatus != nil {
		a.OnStatus(a.StatusSnapshot())
	}
}
