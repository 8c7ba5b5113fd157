package monitor

import (
	"image/color"

	"twinloop/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay adapts a hal.Framebuffer to drivers.Displayer so tinyfont can
// draw on it.
type fbDisplay struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*fbDisplay)(nil)

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	buf := d.buffer()
	if buf == nil {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	buf := d.buffer()
	if buf == nil {
		return nil
	}
	w, h := d.fb.Width(), d.fb.Height()
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				break
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *fbDisplay) buffer() []byte {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	return d.fb.Buffer()
}

// paneDisplay is a rectangular window onto an fbDisplay with its own pixel
// memory. It scrolls the way a panel with vertical scroll does: after
// SetScroll(line), pane row y shows memory row (y+line) mod height. The
// console terminal draws into it with pane-relative coordinates and
// Display copies the rotated rows into the framebuffer.
type paneDisplay struct {
	d          *fbDisplay
	x, y, w, h int16
	mem        []uint16
	scroll     int16
}

func newPane(d *fbDisplay, x, y, w, h int16) *paneDisplay {
	return &paneDisplay{d: d, x: x, y: y, w: w, h: h, mem: make([]uint16, int(w)*int(h))}
}

func (p *paneDisplay) Size() (x, y int16) { return p.w, p.h }

func (p *paneDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return
	}
	p.mem[int(y)*int(p.w)+int(x)] = hal.RGB565(c.R, c.G, c.B)
}

func (p *paneDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, int(p.w))
	y0 := clampInt(int(y), 0, int(p.h))
	x1 := clampInt(int(x)+int(width), 0, int(p.w))
	y1 := clampInt(int(y)+int(height), 0, int(p.h))
	pixel := hal.RGB565(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		row := p.mem[py*int(p.w) : (py+1)*int(p.w)]
		for px := x0; px < x1; px++ {
			row[px] = pixel
		}
	}
	return nil
}

// SetScroll sets the memory row shown at the top of the pane.
func (p *paneDisplay) SetScroll(line int16) {
	if p.h <= 0 {
		return
	}
	line %= p.h
	if line < 0 {
		line += p.h
	}
	p.scroll = line
}

func (p *paneDisplay) SetRotation(drivers.Rotation) error { return nil }

// Display copies the pane into the framebuffer. It does not present.
func (p *paneDisplay) Display() error {
	buf := p.d.buffer()
	if buf == nil || p.h <= 0 {
		return nil
	}
	fw, fh := p.d.fb.Width(), p.d.fb.Height()
	stride := p.d.fb.StrideBytes()
	w := int(p.w)
	if int(p.x)+w > fw {
		w = fw - int(p.x)
	}
	for dy := 0; dy < int(p.h); dy++ {
		fy := int(p.y) + dy
		if fy < 0 || fy >= fh {
			continue
		}
		src := p.mem[((dy+int(p.scroll))%int(p.h))*int(p.w):]
		off := fy*stride + int(p.x)*2
		for px := 0; px < w; px++ {
			if off+1 >= len(buf) {
				break
			}
			buf[off] = byte(src[px])
			buf[off+1] = byte(src[px] >> 8)
			off += 2
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
