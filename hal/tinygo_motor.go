//go:build tinygo && baremetal

package hal

import "machine"

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmForPin returns the PWM slice driving pin. The RP2040 has slices 0-7.
func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

// hBridge drives one motor through a dual-input H-bridge: IN1/IN2 pick the
// direction and the enable pin carries the PWM duty.
type hBridge struct {
	in1, in2 machine.Pin
	en       machine.Pin
	pwm      pwmDevice
	ch       uint8
	top      uint32

	enabled bool
	duty    int32
}

// motorCarrierHz keeps the PWM carrier above the audible range.
const motorCarrierHz = 20000

func newHBridge(in1, in2, en machine.Pin) *hBridge {
	m := &hBridge{in1: in1, in2: in2, en: en, pwm: pwmForPin(en)}
	in1.Configure(machine.PinConfig{Mode: machine.PinOutput})
	in2.Configure(machine.PinConfig{Mode: machine.PinOutput})
	in1.Low()
	in2.Low()
	if m.pwm == nil {
		return m
	}
	if err := m.pwm.Configure(machine.PWMConfig{Period: 1e9 / motorCarrierHz}); err != nil {
		m.pwm = nil
		return m
	}
	ch, err := m.pwm.Channel(en)
	if err != nil {
		m.pwm = nil
		return m
	}
	m.ch = ch
	m.top = m.pwm.Top()
	m.pwm.Set(m.ch, 0)
	return m
}

func (m *hBridge) SetCommand(duty int32) {
	m.duty = ClampDuty(duty)
	m.apply()
}

func (m *hBridge) Enable() {
	m.enabled = true
	m.apply()
}

func (m *hBridge) Disable() {
	m.enabled = false
	m.apply()
}

func (m *hBridge) apply() {
	if m.pwm == nil {
		return
	}
	if !m.enabled || m.duty == 0 {
		m.in1.Low()
		m.in2.Low()
		m.pwm.Set(m.ch, 0)
		return
	}
	mag := m.duty
	if mag < 0 {
		mag = -mag
		m.in1.Low()
		m.in2.High()
	} else {
		m.in1.High()
		m.in2.Low()
	}
	m.pwm.Set(m.ch, uint32(mag)*m.top/100)
}

// newQuadEncoder counts A/B edges from pin-change interrupts into a
// protected counter.
func newQuadEncoder(ch int, a, b machine.Pin) *EncoderCounter {
	c := NewEncoderCounter(ch)
	dec := &QuadDecoder{}
	a.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	dec.Update(a.Get(), b.Get())
	handler := func(machine.Pin) {
		c.Store(dec.Update(a.Get(), b.Get()))
	}
	a.SetInterrupt(machine.PinToggle, handler)
	b.SetInterrupt(machine.PinToggle, handler)
	return c
}
