// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character panel wired to GPIO
// lines, for developing against the lcd and chardev packages without
// hardware.
//
// A Panel implements lcd.PinController. Hand it to the driver in
// place of the system controller and it decodes the bit-banged 4-bit
// protocol into a character matrix, which can be inspected directly,
// rendered to a terminal, or drawn into an image.
//
// Useful while you are waiting for your display to come by mail.
package lcdsim
