//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// operatorStop reports whether the operator pressed Escape, q, or Ctrl-C in
// the window since the last frame.
func operatorStop() bool {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		return true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return true
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r == 'q' || r == 'Q' {
			return true
		}
	}
	return false
}
