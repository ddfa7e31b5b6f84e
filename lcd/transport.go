// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// enablePulse is the minimum width of the enable strobe and of the
// settle time that follows it. Below this the controller misses the
// latch or reads a corrupted nibble.
const enablePulse = 50 * time.Microsecond

// ErrReleased is returned when a transfer is attempted after the pins
// have been released.
var ErrReleased = errors.New("lcd: pins released")

// Transport owns the seven acquired display pins and performs the
// timed two-nibble transfer that latches one byte into the display.
//
// A Transport is safe for concurrent use; every transfer runs under
// an internal lock so two callers cannot interleave nibbles.
type Transport struct {
	ctrl PinController
	pins PinAssignment

	mu   sync.Mutex
	rs   gpio.PinOut
	rw   gpio.PinOut
	e    gpio.PinOut
	data [4]gpio.PinOut // bus order DB7, DB6, DB5, DB4
	open bool
}

// NewTransport acquires the seven display pins in the fixed order RS,
// RW, E, DB4, DB5, DB6, DB7, each configured as an output driven low.
// If any acquisition fails, the pins already granted are released
// before the error is returned so nothing stays claimed.
func NewTransport(ctrl PinController, pins PinAssignment) (*Transport, error) {
	t := &Transport{ctrl: ctrl, pins: pins}
	order := pins.ordered()
	for i, req := range order {
		pin, err := ctrl.Acquire(req.Signal, req.Number)
		if err != nil {
			for _, prev := range order[:i] {
				if rerr := ctrl.Release(prev.Number); rerr != nil {
					log.Printf("lcd: releasing %s after failed acquisition: %v", prev.Signal, rerr)
				}
			}
			return nil, fmt.Errorf("lcd: acquiring %s (GPIO %d): %w", req.Signal, req.Number, err)
		}
		switch req.Signal {
		case RS:
			t.rs = pin
		case RW:
			t.rw = pin
		case E:
			t.e = pin
		case DB4:
			t.data[3] = pin
		case DB5:
			t.data[2] = pin
		case DB6:
			t.data[1] = pin
		case DB7:
			t.data[0] = pin
		}
	}
	t.open = true
	return t, nil
}

func (t *Transport) String() string {
	p := t.pins
	return fmt.Sprintf("LCD4bit{RS:%d RW:%d E:%d DB4-7:%d,%d,%d,%d}", p.RS, p.RW, p.E, p.DB4, p.DB5, p.DB6, p.DB7)
}

// SendByte presents value to the display as two nibbles, most
// significant first, strobing Enable once per nibble with the minimum
// pulse and settle widths. RS and RW are not touched; select the mode
// first with CommandMode or DataMode.
//
// The display has no feedback channel, so a failed pin write is
// reported but the transfer still runs to completion.
func (t *Transport) SendByte(value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sendByte(value)
}

func (t *Transport) sendByte(value byte) error {
	if !t.open {
		return ErrReleased
	}
	hi, lo := Nibbles(value)
	err := t.writeNibble(hi)
	if lerr := t.writeNibble(lo); err == nil {
		err = lerr
	}
	return err
}

func (t *Transport) writeNibble(n Nibble) error {
	var err error
	keep := func(e error) {
		if err == nil {
			err = e
		}
	}
	for i, l := range n.Levels() {
		keep(t.data[i].Out(l))
	}
	keep(t.e.Out(gpio.High))
	time.Sleep(enablePulse)
	keep(t.e.Out(gpio.Low))
	time.Sleep(enablePulse)
	return err
}

// CommandMode drives RS low so subsequent bytes are interpreted as
// instructions.
func (t *Transport) CommandMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setRS(gpio.Low)
}

// DataMode drives RS high so subsequent bytes are written to the
// display as glyphs.
func (t *Transport) DataMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setRS(gpio.High)
}

func (t *Transport) setRS(l gpio.Level) error {
	if !t.open {
		return ErrReleased
	}
	return t.rs.Out(l)
}

// Close releases all seven pins. Closing an already closed transport
// is a no-op; releasing a pin that is already free must be tolerated
// by the controller.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil
	}
	t.open = false
	var err error
	for _, req := range t.pins.ordered() {
		if rerr := t.ctrl.Release(req.Number); rerr != nil && err == nil {
			err = fmt.Errorf("lcd: releasing %s: %w", req.Signal, rerr)
		}
	}
	return err
}

// Halt releases the pins. Implements conn.Resource.
func (t *Transport) Halt() error {
	return t.Close()
}

var _ conn.Resource = &Transport{}
