//go:build !tinygo && cgo

package hal

import (
	"image"
	"os"

	"twinloop/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows the display framebuffer and
// steps the firmware once per frame. Escape or closing the window stops it.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) (App, error)) error {
	h := newHostHAL(os.Stderr, os.Stdout)
	defer h.Close()

	app, err := newApp(h)
	if err != nil {
		return err
	}
	defer app.Stop()

	g := &hostGame{h: h, app: app}
	ebiten.SetWindowTitle("twinloop (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(250)
	err = ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type hostGame struct {
	h     *hostHAL
	app   App
	img   *image.RGBA
	fbImg *ebiten.Image
	buf   []byte
	seq   uint64
}

func (g *hostGame) Update() error {
	if operatorStop() {
		return ebiten.Termination
	}
	return g.app.Step()
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.buf = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	if seq, ok := fb.snapshot(g.buf, g.seq); ok {
		g.seq = seq
		src := g.buf
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := (i / 2) * 4
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
