// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiolcd drives an HD44780-compatible character LCD wired
// directly to GPIO lines, and exposes it to callers as an openable
// device.
//
// The lcd package implements the 4-bit bit-bang protocol, the chardev
// package wraps it in an open/close device lifecycle, and the lcdsim
// package provides a simulated panel for development without hardware.
package gpiolcd
