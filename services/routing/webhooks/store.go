// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package webhooks manages partner notification subscriptions.
//
// Registrations live behind the Store interface so the in-memory
// implementation can be swapped for a database without touching the
// handlers. Notify matches subscriptions and records intended
// deliveries; actual HTTP delivery is out of scope for this service.
package webhooks

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Supported webhook event types.
const (
	EventDetected  = "event_detected"
	ParkingFull    = "parking_full"
	RouteDisrupted = "route_disrupted"
)

// KnownEventType reports whether t is a subscribable event type.
func KnownEventType(t string) bool {
	switch t {
	case EventDetected, ParkingFull, RouteDisrupted:
		return true
	}
	return false
}

// Registration is one partner subscription.
type Registration struct {
	ID           string    `json:"webhook_id"`
	URL          string    `json:"url"`
	EventTypes   []string  `json:"event_types"`
	Secret       string    `json:"-"`
	PartnerName  string    `json:"partner_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	Status       string    `json:"status"`
}

// SubscribedTo reports whether the registration wants eventType.
func (r Registration) SubscribedTo(eventType string) bool {
	for _, t := range r.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// ErrNotFound is returned when a webhook id has no registration.
var ErrNotFound = fmt.Errorf("webhook not found")

// Store persists webhook registrations.
type Store interface {
	Add(reg Registration) error
	List() ([]Registration, error)
	Delete(id string) error

	// Matching returns active registrations subscribed to eventType.
	Matching(eventType string) ([]Registration, error)
}

// MemoryStore is the in-process Store used by default.
//
// # Thread Safety
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	regs map[string]Registration
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regs: make(map[string]Registration)}
}

func (s *MemoryStore) Add(reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg.ID] = reg
	return nil
}

func (s *MemoryStore) List() ([]Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[id]; !ok {
		return ErrNotFound
	}
	delete(s.regs, id)
	return nil
}

func (s *MemoryStore) Matching(eventType string) ([]Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Registration, 0)
	for _, reg := range s.regs {
		if reg.Status == "active" && reg.SubscribedTo(eventType) {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

// NewID mints a webhook id in the wh_ prefix format.
func NewID() string {
	return "wh_" + uuid.NewString()[:12]
}
