//go:build !tinygo

// Command capture reads a step-response stream, as printed by the firmware
// on its serial port, and summarizes each axis. It can also save the
// records as clean CSV for plotting.
//
//	capture -in /dev/ttyACM0 -until 3s -csv step.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"twinloop/capture"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "capture:", err)
		os.Exit(1)
	}
}

// axisStats summarizes one value column.
type axisStats struct {
	first, last, min, max int32
	peakAt                time.Duration
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fset := flag.NewFlagSet("capture", flag.ContinueOnError)
	fset.SetOutput(stdout)
	inPath := fset.String("in", "-", "Input stream; a serial device or file (- = stdin).")
	until := fset.Duration("until", 0, "Stop at the first record at or past this time (0 = read to the done marker).")
	csvPath := fset.String("csv", "", "Write the records to this file.")
	if err := fset.Parse(args); err != nil {
		return err
	}

	in := stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			return fmt.Errorf("open %q: %w", *inPath, err)
		}
		defer f.Close()
		in = f
	}

	var csv *capture.Writer
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return fmt.Errorf("create %q: %w", *csvPath, err)
		}
		defer f.Close()
		csv = capture.NewWriter(f)
	}

	r := capture.NewReader(in)
	if *until > 0 {
		r.Until(*until)
	}

	var (
		stats   []axisStats
		records int
		end     time.Duration
	)
	for r.Next() {
		rec := r.Record()
		if records == 0 {
			stats = make([]axisStats, len(rec.Values))
			for i, v := range rec.Values {
				stats[i] = axisStats{first: v, last: v, min: v, max: v, peakAt: rec.Time}
			}
		}
		for i, v := range rec.Values {
			if i >= len(stats) {
				break
			}
			s := &stats[i]
			s.last = v
			if v < s.min {
				s.min = v
			}
			if v > s.max {
				s.max = v
				s.peakAt = rec.Time
			}
		}
		if csv != nil {
			if err := csv.WriteRecord(rec.Time, rec.Values...); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		records++
		end = rec.Time
	}
	if err := r.Err(); err != nil && !(errors.Is(err, capture.ErrNoSentinel) && records > 0) {
		return err
	}
	if csv != nil {
		if err := csv.Done(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if records == 0 {
		return errors.New("no records")
	}

	fmt.Fprintf(stdout, "%d records over %dms (%d lines skipped, done=%v)\n",
		records, end.Milliseconds(), r.Skipped(), r.Done())
	for i, s := range stats {
		fmt.Fprintf(stdout, "axis %d: start %d final %d min %d max %d (peak at %dms)\n",
			i+1, s.first, s.last, s.min, s.max, s.peakAt.Milliseconds())
	}
	return nil
}
