// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Signal names one of the logical display lines.
type Signal string

// The seven signals of the 4-bit bus.
const (
	RS  Signal = "RS" // register select: instruction or glyph data
	RW  Signal = "RW" // read/write select, held low for write
	E   Signal = "E"  // enable strobe, latches the presented nibble
	DB4 Signal = "DB4"
	DB5 Signal = "DB5"
	DB6 Signal = "DB6"
	DB7 Signal = "DB7"
)

// PinAssignment maps each logical signal to a physical GPIO number.
type PinAssignment struct {
	RS, RW, E, DB4, DB5, DB6, DB7 int
}

// DefaultPins is the wiring contract this driver was written against.
// Changing it means rewiring the display.
var DefaultPins = PinAssignment{RS: 4, RW: 17, E: 18, DB4: 22, DB5: 23, DB6: 24, DB7: 25}

type pinRequest struct {
	Signal Signal
	Number int
}

// ordered returns the signals with their physical numbers in the
// fixed acquisition order.
func (p PinAssignment) ordered() [7]pinRequest {
	return [7]pinRequest{
		{RS, p.RS},
		{RW, p.RW},
		{E, p.E},
		{DB4, p.DB4},
		{DB5, p.DB5},
		{DB6, p.DB6},
		{DB7, p.DB7},
	}
}

// PinController grants and revokes exclusive use of physical output
// lines. Acquire configures the line as an output driven low before
// returning it; a line that cannot be claimed returns an error.
// Release of a line that is already free must succeed.
type PinController interface {
	Acquire(signal Signal, number int) (gpio.PinOut, error)
	Release(number int) error
}

// SystemController returns a PinController backed by the host GPIO
// registry. The caller must have initialized the host, typically with
// host.Init.
func SystemController() PinController {
	return systemController{}
}

type systemController struct{}

func (systemController) Acquire(signal Signal, number int) (gpio.PinOut, error) {
	pin := gpioreg.ByName(strconv.Itoa(number))
	if pin == nil {
		return nil, fmt.Errorf("lcd: no GPIO %d for %s", number, signal)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("lcd: configuring %s: %w", signal, err)
	}
	return pin, nil
}

func (systemController) Release(number int) error {
	if pin := gpioreg.ByName(strconv.Itoa(number)); pin != nil {
		return pin.Halt()
	}
	return nil
}
