// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package chardev

import (
	"fmt"
	"sync"
)

// StaticRegistrar is an in-memory Registrar that hands out sequential
// major numbers. It is meant for simulations and tests; registering
// with a real host is the embedding environment's concern.
type StaticRegistrar struct {
	mu    sync.Mutex
	next  int
	names map[string]bool
}

// NewStaticRegistrar returns a registrar whose first assigned major
// is base.
func NewStaticRegistrar(base int) *StaticRegistrar {
	return &StaticRegistrar{next: base, names: map[string]bool{}}
}

// Register assigns the next major number to name. Registering a name
// twice fails until the first registration is closed.
func (r *StaticRegistrar) Register(name string) (Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[name] {
		return nil, fmt.Errorf("chardev: %q already registered", name)
	}
	r.names[name] = true
	major := r.next
	r.next++
	return &staticRegistration{registrar: r, name: name, major: major}, nil
}

type staticRegistration struct {
	registrar *StaticRegistrar
	name      string
	major     int
	closed    bool
}

func (s *staticRegistration) Major() int {
	return s.major
}

func (s *staticRegistration) Close() error {
	s.registrar.mu.Lock()
	defer s.registrar.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	delete(s.registrar.names, s.name)
	return nil
}
