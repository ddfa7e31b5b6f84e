// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package chardev

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"periph.io/x/conn/v3"

	"github.com/tonypro17/gpiolcd/lcd"
)

// State tracks the driver through its lifetime.
type State int

// Lifecycle states, in the order they are normally reached.
const (
	Uninitialized State = iota
	Registered
	PinsAcquired
	Ready
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Registered:
		return "registered"
	case PinsAcquired:
		return "pins acquired"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Registrar registers the driver with the host so user programs can
// locate and open it. A failed Register must leave nothing behind.
type Registrar interface {
	Register(name string) (Registration, error)
}

// Registration is a live device registration.
type Registration interface {
	// Major reports the device identifier the host assigned.
	Major() int
	// Close destroys the device node and unregisters the identifier,
	// in the reverse of creation order.
	Close() error
}

// ErrNotReady is returned by Open when the driver is not serving.
var ErrNotReady = errors.New("chardev: device not ready")

// ErrUnsupportedRequest is returned for every control request; the
// device implements none. It matches os.ErrInvalid.
var ErrUnsupportedRequest = fmt.Errorf("chardev: unsupported control request: %w", os.ErrInvalid)

// Opts configures the driver.
type Opts struct {
	// Name is the device name to register. Defaults to "lcd".
	Name string
	// Pins is the display wiring. Defaults to lcd.DefaultPins.
	Pins lcd.PinAssignment
	// NoSelfTest skips the one-glyph smoke test at the end of
	// initialization.
	NoSelfTest bool
}

// Dev is the LCD character device driver. Create one with New, bring
// it up with Start, and shut it down with Stop. All methods are safe
// for concurrent use.
type Dev struct {
	ctrl lcd.PinController
	reg  Registrar
	opts Opts

	mu           sync.Mutex
	state        State
	registration Registration
	transport    *lcd.Transport
	refs         int // the driver's own reference plus one per open handle
}

// New prepares a driver using the given pin controller and registrar.
// Nothing is touched until Start.
func New(ctrl lcd.PinController, reg Registrar, opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Name == "" {
		o.Name = "lcd"
	}
	if o.Pins == (lcd.PinAssignment{}) {
		o.Pins = lcd.DefaultPins
	}
	return &Dev{ctrl: ctrl, reg: reg, opts: o}
}

func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registration != nil {
		return fmt.Sprintf("gpiolcd %q (major %d): %s", d.opts.Name, d.registration.Major(), d.state)
	}
	return fmt.Sprintf("gpiolcd %q: %s", d.opts.Name, d.state)
}

// State reports the current lifecycle state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start registers the device, acquires the seven display pins and
// runs the power-on sequence. On any failure everything already set
// up is torn down, the driver lands in Stopped, and the error is
// returned; no registration or pin is left behind.
func (d *Dev) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Uninitialized {
		return fmt.Errorf("chardev: cannot start from state %q", d.state)
	}
	reg, err := d.reg.Register(d.opts.Name)
	if err != nil {
		d.state = Stopped
		return fmt.Errorf("chardev: registering %q: %w", d.opts.Name, err)
	}
	d.registration = reg
	d.state = Registered

	t, err := lcd.NewTransport(d.ctrl, d.opts.Pins)
	if err != nil {
		if cerr := reg.Close(); cerr != nil {
			log.Printf("chardev: unregistering after failed pin acquisition: %v", cerr)
		}
		d.registration = nil
		d.state = Stopped
		return err
	}
	d.transport = t
	d.refs = 1
	d.state = PinsAcquired

	// The display has no error channel; a reported failure here is a
	// pin-level write problem, not a reason to abort startup.
	if err := lcd.Initialize(t, &lcd.InitOpts{SelfTest: !d.opts.NoSelfTest}); err != nil {
		log.Printf("chardev: display initialization: %v", err)
	}
	d.state = Ready
	return nil
}

// Handle is one open file on the device.
type Handle struct {
	dev    *Dev
	closed bool // guarded by dev.mu
}

// Open returns a new handle on the device. Any number of handles may
// be open at once; opening never touches the hardware.
func (d *Dev) Open() (*Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return nil, fmt.Errorf("%w (state %q)", ErrNotReady, d.state)
	}
	d.refs++
	return &Handle{dev: d}, nil
}

// Close drops the handle's reference to the pin set. The pins stay
// acquired while the driver or any other handle still references
// them; the last reference releases all seven. Closing a handle twice
// is a no-op.
func (h *Handle) Close() error {
	d := h.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return d.unref()
}

// Control rejects every request; the device has no control surface.
// The request code and argument are not interpreted, and driver state
// is never affected. The handle remains usable.
func (h *Handle) Control(req uint, arg uintptr) error {
	return ErrUnsupportedRequest
}

// unref is called with d.mu held.
func (d *Dev) unref() error {
	d.refs--
	if d.refs > 0 || d.transport == nil {
		return nil
	}
	return d.transport.Close()
}

// Stop clears the display, drops the driver's pin reference and
// destroys the device registration, in that order. The clear happens
// while the pins are still owned. Handles that are still open keep
// the pins acquired until they close; everything else is torn down
// immediately. Stopping twice is a no-op.
func (d *Dev) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case Stopped:
		return nil
	case Uninitialized:
		d.state = Stopped
		return nil
	}
	d.state = ShuttingDown

	var err error
	if d.transport != nil {
		// Best effort; the display cannot acknowledge the clear.
		if cerr := d.transport.CommandMode(); cerr != nil {
			log.Printf("chardev: selecting instruction register: %v", cerr)
		}
		if cerr := d.transport.SendByte(lcd.Clear); cerr != nil {
			log.Printf("chardev: clearing display: %v", cerr)
		}
		err = d.unref()
	}
	if d.registration != nil {
		if cerr := d.registration.Close(); cerr != nil && err == nil {
			err = cerr
		}
		d.registration = nil
	}
	d.state = Stopped
	return err
}

// Halt stops the driver. Implements conn.Resource.
func (d *Dev) Halt() error {
	return d.Stop()
}

var _ conn.Resource = &Dev{}
