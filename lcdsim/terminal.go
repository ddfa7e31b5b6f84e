// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Backlight colors for the terminal and image renderings.
var (
	backlightOn  = color.NRGBA{R: 0x66, G: 0xdd, B: 0x33, A: 255}
	backlightOff = color.NRGBA{R: 0x1a, G: 0x33, B: 0x14, A: 255}
)

// Render writes an ANSI rendering of the panel to w, framed by a
// bezel in the backlight color. Pass nil to write to stdout with
// platform color handling.
func (p *Panel) Render(w io.Writer) error {
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	p.mu.Lock()
	bl := backlightOff
	if p.displayOn {
		bl = backlightOn
	}
	lines := make([]string, p.rows)
	for i := range lines {
		lines[i] = string(p.cells[i*p.cols : (i+1)*p.cols])
	}
	p.mu.Unlock()

	cell := ansi256.Default.Block(bl)
	var buf bytes.Buffer
	border := strings.Repeat(cell, p.cols+2)
	buf.WriteString(border + "\033[0m\n")
	for _, line := range lines {
		buf.WriteString(cell + "\033[0m")
		buf.WriteString(line)
		buf.WriteString(cell + "\033[0m\n")
	}
	buf.WriteString(border + "\033[0m\n")
	_, err := buf.WriteTo(w)
	return err
}
