// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/tonypro17/gpiolcd/lcd"
)

// secondLineAddr is the DDRAM address of the first cell of the
// second row on HD44780 panels.
const secondLineAddr = 0x40

// Write is one byte latched by the panel, in arrival order.
type Write struct {
	Value byte
	Data  bool // RS was high: glyph data, not an instruction
}

// Panel is a simulated HD44780 in 4-bit bus mode. It implements
// lcd.PinController; it watches the lines it hands out and latches a
// nibble on every falling edge of E, pairing nibbles into bytes.
//
// The instruction subset the lcd package issues is executed: clear,
// home, entry mode, display on/off, function set and set-address.
// Other instructions are latched but ignored.
type Panel struct {
	mu sync.Mutex

	rows, cols int
	cells      []byte
	addr       int  // DDRAM address counter
	increment  bool // entry mode: cursor moves right
	displayOn  bool

	pins map[int]*simPin
	deny map[int]bool

	rs, rw, enable gpio.Level
	data           [4]gpio.Level // bit 0 = DB4
	high           byte
	hasHigh        bool

	pulses int
	writes []Write
}

// New returns a blank panel of the given geometry. 2 rows by 16
// columns matches the usual hardware.
func New(rows, cols int) *Panel {
	p := &Panel{
		rows:      rows,
		cols:      cols,
		cells:     make([]byte, rows*cols),
		increment: true,
		pins:      map[int]*simPin{},
		deny:      map[int]bool{},
	}
	p.clear()
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("lcdsim.Panel{%dx%d}", p.cols, p.rows)
}

// Deny makes future acquisitions of the given pin numbers fail, for
// exercising partial-failure paths.
func (p *Panel) Deny(numbers ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range numbers {
		p.deny[n] = true
	}
}

// Acquire implements lcd.PinController.
func (p *Panel) Acquire(signal lcd.Signal, number int) (gpio.PinOut, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deny[number] {
		return nil, fmt.Errorf("lcdsim: GPIO %d denied", number)
	}
	if pin, ok := p.pins[number]; ok && pin.acquired {
		return nil, fmt.Errorf("lcdsim: GPIO %d already acquired as %s", number, pin.signal)
	}
	pin := &simPin{panel: p, signal: signal, number: number, acquired: true}
	p.pins[number] = pin
	return pin, nil
}

// Release implements lcd.PinController. Releasing a free pin is a
// no-op.
func (p *Panel) Release(number int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pin, ok := p.pins[number]; ok {
		pin.acquired = false
	}
	return nil
}

// Acquired reports how many pins are currently held.
func (p *Panel) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, pin := range p.pins {
		if pin.acquired {
			n++
		}
	}
	return n
}

// EnablePulses reports how many rising edges the E line has seen.
func (p *Panel) EnablePulses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulses
}

// Writes returns a copy of every byte latched since construction.
func (p *Panel) Writes() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Write(nil), p.writes...)
}

// On reports whether the display is switched on.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayOn
}

// Line returns the text on the given row, space padded to the panel
// width.
func (p *Panel) Line(row int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < 0 || row >= p.rows {
		return ""
	}
	return string(p.cells[row*p.cols : (row+1)*p.cols])
}

// set is called by a pin on every level change.
func (p *Panel) set(pin *simPin, l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !pin.acquired {
		return fmt.Errorf("lcdsim: write to released pin %s", pin.signal)
	}
	switch pin.signal {
	case lcd.RS:
		p.rs = l
	case lcd.RW:
		p.rw = l
	case lcd.E:
		if l == gpio.High && p.enable == gpio.Low {
			p.pulses++
		}
		if l == gpio.Low && p.enable == gpio.High {
			p.latch()
		}
		p.enable = l
	case lcd.DB4:
		p.data[0] = l
	case lcd.DB5:
		p.data[1] = l
	case lcd.DB6:
		p.data[2] = l
	case lcd.DB7:
		p.data[3] = l
	default:
		return fmt.Errorf("lcdsim: unknown signal %q", pin.signal)
	}
	return nil
}

// latch reads the data lines on the falling edge of E. Called with
// p.mu held.
func (p *Panel) latch() {
	var n byte
	for i, l := range p.data {
		if l {
			n |= 1 << uint(i)
		}
	}
	if !p.hasHigh {
		p.high = n
		p.hasHigh = true
		return
	}
	p.hasHigh = false
	p.execute(p.high<<4|n, bool(p.rs))
}

// execute runs one complete byte. Called with p.mu held.
func (p *Panel) execute(b byte, data bool) {
	p.writes = append(p.writes, Write{Value: b, Data: data})
	if data {
		p.put(b)
		return
	}
	switch {
	case b == 0x00:
		// Not a documented instruction; the hardware ignores it.
	case b == 0x01:
		p.clear()
	case b&0xFE == 0x02:
		p.addr = 0
	case b&0xFC == 0x04:
		p.increment = b&0x02 != 0
	case b&0xF8 == 0x08:
		p.displayOn = b&0x04 != 0
	case b&0xE0 == 0x20:
		// Function set. The bus width is fixed by the wiring, so
		// nothing is retained; this also swallows the 0x33/0x32
		// bootstrap writes.
	case b&0xC0 == 0x40:
		// CGRAM addressing; custom glyphs are not modeled.
	case b&0x80 == 0x80:
		p.addr = int(b & 0x7F)
	}
}

func (p *Panel) clear() {
	for i := range p.cells {
		p.cells[i] = ' '
	}
	p.addr = 0
	p.increment = true
}

// put writes one glyph at the address counter and advances it.
func (p *Panel) put(b byte) {
	row, col := -1, -1
	switch {
	case p.addr >= 0 && p.addr < p.cols:
		row, col = 0, p.addr
	case p.rows > 1 && p.addr >= secondLineAddr && p.addr < secondLineAddr+p.cols:
		row, col = 1, p.addr-secondLineAddr
	}
	if row >= 0 {
		p.cells[row*p.cols+col] = b
	}
	if p.increment {
		p.addr++
	} else {
		p.addr--
	}
}

// simPin is one simulated output line. Implements gpio.PinOut.
type simPin struct {
	panel    *Panel
	signal   lcd.Signal
	number   int
	acquired bool // guarded by panel.mu
}

func (pin *simPin) Name() string {
	return string(pin.signal)
}

func (pin *simPin) Number() int {
	return pin.number
}

func (pin *simPin) String() string {
	return fmt.Sprintf("lcdsim pin %s (GPIO %d)", pin.signal, pin.number)
}

func (pin *simPin) Function() string {
	return "Out"
}

func (pin *simPin) Halt() error {
	return nil
}

func (pin *simPin) Out(l gpio.Level) error {
	return pin.panel.set(pin, l)
}

func (pin *simPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("lcdsim: PWM not supported")
}

var _ gpio.PinOut = &simPin{}
var _ lcd.PinController = &Panel{}
var _ fmt.Stringer = &Panel{}

// Text returns the whole panel as rows joined by newlines. Handy in
// test failure messages.
func (p *Panel) Text() string {
	lines := make([]string, p.rows)
	for i := range lines {
		lines[i] = p.Line(i)
	}
	return strings.Join(lines, "\n")
}
