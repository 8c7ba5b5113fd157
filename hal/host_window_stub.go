//go:build !tinygo && !cgo

package hal

import "errors"

// RunWindow needs ebiten, which needs cgo on this platform. Use -headless.
func RunWindow(func(HAL) (App, error)) error {
	return errors.New("hal: no window support in this build (CGO_ENABLED=0); run with -headless")
}
