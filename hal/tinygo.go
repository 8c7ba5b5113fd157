//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	port *uartPort
	led  pinLED
	t    *bootClock

	motors   [MotorCount]*hBridge
	encoders [MotorCount]*EncoderCounter
}

// New returns the HAL for a Raspberry Pi Pico (RP2040) motor board.
//
// UART0 on GP0 (TX) / GP1 (RX), 115200 8N1, carries both log lines and the
// capture stream. The board has no panel.
// Motor 1: IN1 GP2, IN2 GP3, EN GP4 (PWM2A); encoder A/B GP6/GP7.
// Motor 2: IN1 GP8, IN2 GP9, EN GP10 (PWM5A); encoder A/B GP12/GP13.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyGoHAL{
		port: &uartPort{uart: uart},
		led:  pinLED(ledPin),
		t:    newBootClock(),
		motors: [MotorCount]*hBridge{
			newHBridge(machine.GP2, machine.GP3, machine.GP4),
			newHBridge(machine.GP8, machine.GP9, machine.GP10),
		},
		encoders: [MotorCount]*EncoderCounter{
			newQuadEncoder(0, machine.GP6, machine.GP7),
			newQuadEncoder(1, machine.GP12, machine.GP13),
		},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.port }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Display() Display { return noPanel{} }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) Serial() Serial   { return h.port }

func (h *tinyGoHAL) Motor(ch int) Motor {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.motors[ch]
}

func (h *tinyGoHAL) Encoder(ch int) Encoder {
	if ch < 0 || ch >= MotorCount {
		return nil
	}
	return h.encoders[ch]
}
