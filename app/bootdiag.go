//go:build !(tinygo && bootdebug)

package app

import "twinloop/hal"

func bootStep(hal.HAL, string) {}
