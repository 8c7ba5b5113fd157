//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"twinloop/app"
	"twinloop/hal"
)

func main() {
	cfg := app.DefaultConfig()
	var headless hal.HeadlessConfig
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&headless.Duration, "duration", 0, "Stop after this long in headless mode (0 = until interrupted).")
	flag.DurationVar(&cfg.Capture, "capture", cfg.Capture, "Length of the step-response capture.")
	flag.Var((*int32Flag)(&cfg.Setpoints[0]), "setpoint1", "Motor 1 step target in encoder ticks.")
	flag.Var((*int32Flag)(&cfg.Setpoints[1]), "setpoint2", "Motor 2 step target in encoder ticks.")
	flag.Float64Var(&cfg.Kp, "kp", cfg.Kp, "Proportional gain, percent duty per tick.")
	flag.Float64Var(&cfg.Ki, "ki", cfg.Ki, "Integral gain, percent duty per tick per run.")
	flag.Var((*int32Flag)(&cfg.Travel), "travel", "Largest allowed |position| before a motor faults (0 = off).")
	flag.BoolVar(&cfg.Profile, "profile", cfg.Profile, "Profile task run times.")
	flag.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Trace motor task state changes.")
	flag.IntVar(&cfg.TraceLimit, "trace-limit", cfg.TraceLimit, "Trace entries kept per task (0 = unbounded).")
	flag.BoolVar(&cfg.Monitor, "monitor", cfg.Monitor, "Draw the diagnostics view.")
	flag.Parse()

	newApp := func(h hal.HAL) (hal.App, error) {
		s, err := app.New(h, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	if headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, headless); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// int32Flag is a flag.Value that rejects values outside the int32 range.
type int32Flag int32

func (f *int32Flag) String() string { return strconv.FormatInt(int64(*f), 10) }

func (f *int32Flag) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return err
	}
	*f = int32Flag(v)
	return nil
}
