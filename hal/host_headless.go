//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Duration stops the run after this much time (0 = run until cancelled).
	Duration time.Duration
}

// RunHeadless runs the firmware without opening a window until ctx is
// cancelled or the configured duration elapses. Reaching the duration is a
// clean stop and returns nil.
func RunHeadless(ctx context.Context, newApp func(HAL) (App, error), cfg HeadlessConfig) error {
	if cfg.Duration < 0 {
		return fmt.Errorf("invalid headless duration: %v", cfg.Duration)
	}

	h := newHostHAL(os.Stderr, os.Stdout)
	defer h.Close()

	app, err := newApp(h)
	if err != nil {
		return err
	}

	runCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	err = app.Run(runCtx)
	if err == context.DeadlineExceeded && ctx.Err() == nil {
		return nil
	}
	return err
}
