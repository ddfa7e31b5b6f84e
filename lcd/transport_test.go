// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// recordPin logs every level change into a shared event list.
type recordPin struct {
	gpiotest.Pin
	events *[]string
}

func (p *recordPin) Out(l gpio.Level) error {
	*p.events = append(*p.events, fmt.Sprintf("%s=%s", p.N, l))
	return p.Pin.Out(l)
}

// recordController hands out recordPins and can fail the n-th
// acquisition.
type recordController struct {
	events   []string
	acquired map[int]bool
	failAt   int // 1-based acquisition that fails, 0 for never
	calls    int
}

func newRecordController() *recordController {
	return &recordController{acquired: map[int]bool{}}
}

func (c *recordController) Acquire(signal Signal, number int) (gpio.PinOut, error) {
	c.calls++
	if c.failAt != 0 && c.calls == c.failAt {
		return nil, errors.New("line busy")
	}
	c.events = append(c.events, "acquire "+string(signal))
	c.acquired[number] = true
	return &recordPin{Pin: gpiotest.Pin{N: string(signal), Num: number}, events: &c.events}, nil
}

func (c *recordController) Release(number int) error {
	c.events = append(c.events, fmt.Sprintf("release %d", number))
	delete(c.acquired, number)
	return nil
}

func TestNewTransportAcquireOrder(t *testing.T) {
	ctrl := newRecordController()
	tr, err := NewTransport(ctrl, DefaultPins)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tr.Close() }()
	want := []string{"acquire RS", "acquire RW", "acquire E", "acquire DB4", "acquire DB5", "acquire DB6", "acquire DB7"}
	if got := strings.Join(ctrl.events, ","); got != strings.Join(want, ",") {
		t.Errorf("acquisition order %q; want %q", got, strings.Join(want, ","))
	}
	if len(ctrl.acquired) != 7 {
		t.Errorf("acquired %d pins; want 7", len(ctrl.acquired))
	}
}

func TestNewTransportPartialFailureReleasesAll(t *testing.T) {
	for k := 1; k <= 7; k++ {
		ctrl := newRecordController()
		ctrl.failAt = k
		if _, err := NewTransport(ctrl, DefaultPins); err == nil {
			t.Fatalf("failAt=%d: NewTransport succeeded", k)
		}
		if len(ctrl.acquired) != 0 {
			t.Errorf("failAt=%d: %d pins still acquired after failure", k, len(ctrl.acquired))
		}
	}
}

func TestSendByteTwoPulses(t *testing.T) {
	ctrl := newRecordController()
	tr, err := NewTransport(ctrl, DefaultPins)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tr.Close() }()
	ctrl.events = nil

	if err := tr.SendByte(0xA5); err != nil {
		t.Fatal(err)
	}
	var pulses int
	for i, ev := range ctrl.events {
		if ev != "E=High" {
			continue
		}
		pulses++
		// The four data lines settle before each rising edge.
		if i < 4 {
			t.Fatalf("enable raised before data lines were driven: %v", ctrl.events[:i+1])
		}
		for _, data := range ctrl.events[i-4 : i] {
			if strings.HasPrefix(data, "E=") || strings.HasPrefix(data, "RS=") || strings.HasPrefix(data, "RW=") {
				t.Errorf("expected data line writes before pulse, got %q", data)
			}
		}
		if next := ctrl.events[i+1]; next != "E=Low" {
			t.Errorf("pulse not lowered, next event %q", next)
		}
	}
	if pulses != 2 {
		t.Errorf("SendByte issued %d enable pulses; want 2", pulses)
	}
	for _, ev := range ctrl.events {
		if strings.HasPrefix(ev, "RS=") || strings.HasPrefix(ev, "RW=") {
			t.Errorf("SendByte touched a mode line: %q", ev)
		}
	}
}

func TestSendByteDataPattern(t *testing.T) {
	ctrl := newRecordController()
	tr, err := NewTransport(ctrl, DefaultPins)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tr.Close() }()
	ctrl.events = nil

	// 0x51: high nibble 0101, low nibble 0001, DB7 first.
	if err := tr.SendByte(0x51); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"DB7=Low", "DB6=High", "DB5=Low", "DB4=High", "E=High", "E=Low",
		"DB7=Low", "DB6=Low", "DB5=Low", "DB4=High", "E=High", "E=Low",
	}
	got := strings.Join(ctrl.events, ",")
	if got != strings.Join(want, ",") {
		t.Errorf("event sequence\n got %s\nwant %s", got, strings.Join(want, ","))
	}
}

func TestTransportModeLines(t *testing.T) {
	ctrl := newRecordController()
	tr, err := NewTransport(ctrl, DefaultPins)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tr.Close() }()
	ctrl.events = nil

	if err := tr.DataMode(); err != nil {
		t.Fatal(err)
	}
	if err := tr.CommandMode(); err != nil {
		t.Fatal(err)
	}
	want := "RS=High,RS=Low"
	if got := strings.Join(ctrl.events, ","); got != want {
		t.Errorf("mode events %q; want %q", got, want)
	}
}

func TestCloseIdempotent(t *testing.T) {
	ctrl := newRecordController()
	tr, err := NewTransport(ctrl, DefaultPins)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if len(ctrl.acquired) != 0 {
		t.Errorf("%d pins still acquired after Close", len(ctrl.acquired))
	}
	releases := len(ctrl.events)
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if len(ctrl.events) != releases {
		t.Error("second Close released pins again")
	}
	if err := tr.SendByte(Clear); !errors.Is(err, ErrReleased) {
		t.Errorf("SendByte after Close = %v; want ErrReleased", err)
	}
}
