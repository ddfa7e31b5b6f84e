// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// The instruction subset this driver issues. Values are HD44780
// instruction bytes.
const (
	Reset           byte = 0x00
	Clear           byte = 0x01
	Home            byte = 0x02
	Entry           byte = 0x06 // cursor advances right, no display shift
	DisplayOff      byte = 0x08
	DisplayOn       byte = 0x0F
	FunctionSet4Bit byte = 0x20
	Startup1        byte = 0x33
	Startup2        byte = 0x32
)

// selfTestGlyph is the single character written when the post-init
// self test is enabled.
const selfTestGlyph byte = 'Q'

// Settle times from the HD44780 power-on procedure. These are lower
// bounds; the controller ignores instructions sent earlier.
const (
	powerOnSettle = 15 * time.Millisecond
	resetSettle   = 35 * time.Millisecond
)

// InitOpts controls the initialization sequence.
type InitOpts struct {
	// SelfTest writes one glyph to the top-left cell after the
	// sequence completes, proving the bus works end to end. The glyph
	// stays on screen until the next clear.
	SelfTest bool
}

// Initialize replays the fixed power-on sequence the controller
// requires before it accepts arbitrary instructions: a settle delay,
// the 4-bit mode bootstrap, then display off, clear, entry mode,
// display on and home.
//
// The display cannot report failures, so pin write errors are logged
// and the sequence continues; the first error seen is returned for
// callers that want to know. The transport lock is held for the whole
// sequence, and RS is left low when Initialize returns.
func Initialize(t *Transport, opts *InitOpts) error {
	if opts == nil {
		opts = &InitOpts{SelfTest: true}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var first error
	step := func(name string, err error) {
		if err == nil {
			return
		}
		log.Printf("lcd: init %s: %v", name, err)
		if first == nil {
			first = err
		}
	}
	time.Sleep(powerOnSettle)
	step("reset", t.sendByte(Reset))
	time.Sleep(resetSettle)
	step("startup1", t.sendByte(Startup1))
	step("startup2", t.sendByte(Startup2))
	step("function set", t.sendByte(FunctionSet4Bit))
	step("display off", t.sendByte(DisplayOff))
	step("clear", t.sendByte(Clear))
	step("entry mode", t.sendByte(Entry))
	step("display on", t.sendByte(DisplayOn))
	step("home", t.sendByte(Home))
	if opts.SelfTest {
		step("select data register", t.setRS(gpio.High))
		time.Sleep(resetSettle)
		step("self test glyph", t.sendByte(selfTestGlyph))
		time.Sleep(resetSettle)
	}
	step("select instruction register", t.setRS(gpio.Low))
	return first
}
