// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/tonypro17/gpiolcd/lcd"
	"github.com/tonypro17/gpiolcd/lcdsim"
)

// Run the real initialization sequence against a simulated panel and
// inspect what it latched.
func Example() {
	panel := lcdsim.New(2, 16)
	t, err := lcd.NewTransport(panel, lcd.DefaultPins)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = t.Close() }()

	if err := lcd.Initialize(t, &lcd.InitOpts{SelfTest: true}); err != nil {
		log.Fatal(err)
	}
	fmt.Println(strings.TrimSpace(panel.Line(0)))
	// Output: Q
}
