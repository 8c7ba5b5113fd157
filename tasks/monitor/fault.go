package monitor

import (
	"fmt"
	"image/color"
	"strings"

	"twinloop/hal"
	"twinloop/kernel"
)

// PaintFault fills fb with a description of f and its stack, for when the
// monitor itself is the task that faulted. It returns without drawing if fb
// cannot be drawn on.
func PaintFault(fb hal.Framebuffer, f kernel.Fault) {
	if fb == nil || fb.Buffer() == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	font, fontWidth, fontHeight, fontOffset, ok := initFont()
	if !ok {
		return
	}
	d := &fbDisplay{fb: fb}
	fb.ClearRGB(255, 255, 255)

	lines := []string{
		"Task fault:",
		fmt.Sprintf("task: %s", f.Task),
		fmt.Sprintf("at: %dms", f.At.Milliseconds()),
		fmt.Sprintf("fault: %v", f.Value),
	}
	if len(f.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(f.Stack), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	fg := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	cols := fb.Width() / int(fontWidth)
	if cols <= 0 {
		cols = 1
	}
	maxH := int16(fb.Height())
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > maxH {
				_ = fb.Present()
				return
			}
			chunk, rest := line, ""
			if len(line) > cols {
				chunk, rest = line[:cols], line[cols:]
			}
			writeText(d, font, 0, y+fontOffset, fg, chunk)
			y += fontHeight
			line = strings.TrimLeft(rest, " \t")
		}
	}
	_ = fb.Present()
}
