package monitor

import (
	"fmt"
	"image/color"
	"time"

	"twinloop/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG       = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorFG       = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorDim      = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	colorHeaderBG = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}
	colorFaultBG  = color.RGBA{R: 0xb0, G: 0x10, B: 0x10, A: 0xff}
	colorFaulted  = color.RGBA{R: 0xff, G: 0x50, B: 0x50, A: 0xff}

	axisColors = []color.RGBA{
		{R: 0x40, G: 0xc0, B: 0xff, A: 0xff},
		{R: 0xff, G: 0xb0, B: 0x30, A: 0xff},
	}
)

func initFont() (font tinyfont.Fonter, fontWidth, fontHeight, fontOffset int16, ok bool) {
	font = &proggy.TinySZ8pt7b
	fontHeight = 10
	fontOffset = 6
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth = int16(outboxWidth)
	if fontWidth <= 0 {
		return nil, 0, 0, 0, false
	}
	return font, fontWidth, fontHeight, fontOffset, true
}

func writeText(d *fbDisplay, font tinyfont.Fonter, x, y int16, c color.RGBA, s string) {
	tinyfont.WriteLine(d, font, x, y, s, c)
}

func fitText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (t *Task) renderHeader(now time.Duration, banner string) {
	w := int16(t.fb.Width())
	bg, line := colorHeaderBG, ""
	if banner != "" {
		bg, line = colorFaultBG, banner
	} else {
		ticks, idle := t.cfg.Scheduler.Counters()
		line = fmt.Sprintf("%s  t=%d.%02ds  ticks=%d idle=%d",
			t.cfg.Title, now/time.Second, (now%time.Second)/(10*time.Millisecond), ticks, idle)
	}
	_ = t.d.FillRectangle(0, 0, w, t.headerH, bg)
	writeText(t.d, t.font, 2, 1+t.fontOffset+1, colorFG, fitText(line, t.cols))
}

func (t *Task) renderTable(now time.Duration) {
	w := int16(t.fb.Width())
	fh := t.fontHeight
	t.rows = t.cfg.Scheduler.Snapshot(t.rows[:0])

	_ = t.d.FillRectangle(0, t.tableY, w, fh*int16(len(t.rows)+1), colorBG)
	y := t.tableY + t.fontOffset + 1
	writeText(t.d, t.font, 2, y, colorDim, fitText("TASK         PRI  RUNS   MAX(us) LATE(us) STATUS", t.cols))
	for _, r := range t.rows {
		y += fh
		runs, maxUs, lateUs := "-", "-", "-"
		if r.Profiled {
			runs = fmt.Sprintf("%d", r.Profile.Runs)
			maxUs = fmt.Sprintf("%d", r.Profile.Max.Microseconds())
			lateUs = fmt.Sprintf("%d", r.Profile.MaxLate.Microseconds())
		}
		c := colorFG
		if r.Status == kernel.StatusFaulted {
			c = colorFaulted
		}
		line := fmt.Sprintf("%-12s %3d %5s %9s %8s %s",
			fitText(r.Name, 12), r.Priority, runs, maxUs, lateUs, r.Status)
		writeText(t.d, t.font, 2, y, c, fitText(line, t.cols))
	}
}

func (t *Task) renderPlot() {
	w := int16(t.fb.Width())
	y0, h := t.plotY, t.plotH
	if h < 4 {
		return
	}
	_ = t.d.FillRectangle(0, y0, w, h, colorBG)
	_ = t.d.FillRectangle(0, y0, w, 1, colorHeaderBG)
	_ = t.d.FillRectangle(0, y0+h-1, w, 1, colorHeaderBG)

	scale := int64(100)
	for i, sp := range t.cfg.Setpoints {
		scale = maxAbs(scale, int64(sp.Get()))
		for _, v := range t.hist[i] {
			scale = maxAbs(scale, int64(v))
		}
	}
	scale += scale / 10

	mid := y0 + h/2
	half := int64(h/2 - 1)
	toY := func(v int32) int16 { return mid - int16(int64(v)*half/scale) }

	_ = t.d.FillRectangle(0, mid, w, 1, colorHeaderBG)
	for i, sp := range t.cfg.Setpoints {
		c := axisColors[i%len(axisColors)]
		dim := color.RGBA{R: c.R / 3, G: c.G / 3, B: c.B / 3, A: 0xff}
		_ = t.d.FillRectangle(0, toY(sp.Get()), w, 1, dim)
	}

	if len(t.hist) == 0 {
		return
	}
	n := len(t.hist[0])
	start := (t.head - t.histLen + n) % n
	for i := range t.hist {
		c := axisColors[i%len(axisColors)]
		for k := 0; k < t.histLen; k++ {
			v := t.hist[i][(start+k)%n]
			_ = t.d.FillRectangle(int16(k), toY(v), 1, 2, c)
		}
	}
}

func maxAbs(cur, v int64) int64 {
	if v < 0 {
		v = -v
	}
	if v > cur {
		return v
	}
	return cur
}
