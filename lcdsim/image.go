// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

// Cell geometry of the rendered panel face, in pixels.
const (
	cellW  = 14
	cellH  = 22
	margin = 10
)

// Image draws the panel face into an image: a dark bezel, the
// backlit glass, and the current glyph matrix in a monospace face.
// Intended for embedding simulated output in development tooling.
func (p *Panel) Image() (image.Image, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{Size: 16})

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

	w := p.cols*cellW + 2*margin
	h := p.rows*cellH + 2*margin
	dc := gg.NewContext(w, h)
	dc.SetRGB255(0x20, 0x24, 0x28)
	dc.Clear()
	dc.DrawRoundedRectangle(margin/2, margin/2, float64(w)-margin, float64(h)-margin, 4)
	dc.SetRGBA255(int(bl.R), int(bl.G), int(bl.B), 255)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetRGB255(0x10, 0x20, 0x10)
	for row, line := range lines {
		for col, glyph := range line {
			x := margin + float64(col)*cellW + cellW/2
			y := margin + float64(row)*cellH + cellH/2
			dc.DrawStringAnchored(string(glyph), x, y, 0.5, 0.5)
		}
	}
	return dc.Image(), nil
}
