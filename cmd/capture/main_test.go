//go:build !tinygo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twinloop/capture"
)

const stream = "twinloop v0 booting\r\n" +
	"0,0,0\r\n" +
	"10,1200,-300\r\n" +
	"20,4150,-900\r\n" +
	"30,4010,-1000\r\n" +
	"Done!\r\n"

func TestRunSummarizes(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, strings.NewReader(stream), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"4 records over 30ms (1 lines skipped, done=true)",
		"axis 1: start 0 final 4010 min 0 max 4150 (peak at 20ms)",
		"axis 2: start 0 final -1000 min -1000 max 0 (peak at 0ms)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output = %q, want it to contain %q", got, want)
		}
	}
}

func TestRunUntilWithoutMarker(t *testing.T) {
	in := strings.NewReader("0,1\n10,2\n20,3\n30,4\n")
	var out bytes.Buffer
	if err := run([]string{"-until", "20ms"}, in, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "3 records over 20ms") {
		t.Fatalf("output = %q, want 3 records", out.String())
	}
}

func TestRunWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.csv")
	var out bytes.Buffer
	if err := run([]string{"-csv", path}, strings.NewReader(stream), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	recs, err := capture.ReadAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(recs) != 4 || recs[3].Values[0] != 4010 {
		t.Fatalf("ReadAll() = %v, want 4 records ending at 4010", recs)
	}
}

func TestRunEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, strings.NewReader("noise\n"), &out); err == nil {
		t.Fatal("run() error = nil, want an error for input without records")
	}
}
