// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import "periph.io/x/conn/v3/gpio"

// Nibble is one 4-bit half of a byte, carried in the low four bits.
type Nibble byte

// Nibbles splits a byte into its two 4-bit halves, most significant
// half first. In 4-bit bus mode the display expects the halves in
// exactly that order.
func Nibbles(b byte) (hi, lo Nibble) {
	return Nibble(b >> 4), Nibble(b & 0x0f)
}

// Levels returns the logic levels for the four data lines in bus
// order DB7, DB6, DB5, DB4. Despite the numeric names, DB7 carries
// the most significant bit of the nibble.
func (n Nibble) Levels() [4]gpio.Level {
	return [4]gpio.Level{
		gpio.Level(n&0x08 != 0),
		gpio.Level(n&0x04 != 0),
		gpio.Level(n&0x02 != 0),
		gpio.Level(n&0x01 != 0),
	}
}
