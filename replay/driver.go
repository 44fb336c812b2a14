package replay

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Driver paces an armed Engine: it pulls events one at a time and
// dispatches each at its speed-scaled offset from the start of playback.
// The engine itself never sleeps; all timing lives here.
type Driver struct {
	engine *Engine

	// OnProgress, if set, is called after each dispatched event with the
	// engine's progress percentage.
	OnProgress func(pct float64)

	// sleep is swapped out by tests.
	sleep func(ctx context.Context, d time.Duration)
}

func NewDriver(engine *Engine) *Driver {
	return &Driver{
		engine: engine,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// Delay returns how long after the start of playback an event recorded
// at offsetMS should be dispatched, honoring the speed multiplier.
func Delay(offsetMS uint64, speed float64) time.Duration {
	return time.Duration(float64(offsetMS)/speed) * time.Millisecond
}

// Run walks the loaded stream to exhaustion, stopping early if the
// context is cancelled or the engine is stopped. Per-event validation
// and synthesis failures are logged and playback continues; only the
// caller decides to abort (by cancelling). The engine is stopped on
// return.
func (d *Driver) Run(ctx context.Context) error {
	defer d.engine.Stop()

	start := time.Now()
	speed := d.engine.Speed()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.engine.IsPlaying() {
			return nil
		}

		ev, ok := d.engine.NextEvent()
		if !ok {
			return nil
		}

		if wait := Delay(ev.TimeOffsetMS, speed) - time.Since(start); wait > 0 {
			d.sleep(ctx, wait)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := d.engine.ExecuteEvent(ev); err != nil {
			switch {
			case errors.Is(err, ErrInvalidCoordinates), errors.Is(err, ErrInvalidKeyCode):
				slog.Warn("Skipping invalid replay event", "error", err)
			case errors.Is(err, ErrSynthesisFailed):
				slog.Warn("Input injection rejected, continuing", "error", err)
			default:
				return err
			}
		}

		if d.OnProgress != nil {
			d.OnProgress(d.engine.Progress())
		}
	}
}
