//go:build tinygo

package main

import (
	"context"

	"twinloop/app"
	"twinloop/hal"
)

func main() {
	h := hal.New()
	s, err := app.New(h, app.DefaultConfig())
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		select {}
	}
	_ = s.Run(context.Background())
	select {}
}
