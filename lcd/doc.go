// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd bit-bangs the Hitachi HD44780 display controller in
// 4-bit bus mode over seven GPIO lines.
//
// The package covers pin acquisition, the timed two-nibble transfer
// that latches one byte, and the power-on initialization sequence the
// controller requires before it accepts instructions. Higher level
// concerns, like exposing the display as an openable device, live in
// the chardev package.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package lcd
