// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package providers

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// BreakerState represents the state of a provider circuit breaker.
//
// # States
//
//   - Closed: Normal operation, requests flow to the provider
//   - Open: Provider is failing, requests are rejected immediately
//   - HalfOpen: Testing whether the provider recovered
type BreakerState int

const (
	// BreakerClosed is the normal operating state.
	BreakerClosed BreakerState = iota

	// BreakerOpen means the provider tripped and calls are skipped.
	BreakerOpen

	// BreakerHalfOpen means a probe request is allowed through.
	BreakerHalfOpen
)

// String returns a human-readable state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// ErrBreakerOpen is returned when a provider's circuit is open. The
// gateway treats it like any other provider failure and moves on to
// the next provider in the chain.
var ErrBreakerOpen = errors.New("provider circuit breaker is open")

// BreakerConfig controls how a provider breaker trips and recovers.
type BreakerConfig struct {
	// FailureThreshold is consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is consecutive successes to close from half-open.
	// Default: 2
	SuccessThreshold int

	// OpenTimeout is how long to stay open before probing.
	// Default: 30 seconds
	OpenTimeout time.Duration

	// OnStateChange is called when the state transitions.
	// Called asynchronously to avoid blocking the request path.
	OnStateChange func(from, to BreakerState)
}

// DefaultBreakerConfig returns sensible defaults for external routing
// providers: trip after five straight failures, probe after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// Breaker guards a single routing provider. When a provider starts
// returning errors, the breaker opens and the gateway falls through to
// the next provider without waiting out the HTTP timeout every time.
//
// # Thread Safety
//
// Breaker is safe for concurrent use.
type Breaker struct {
	config      BreakerConfig
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
	mu          sync.RWMutex
}

// NewBreaker creates a closed breaker, applying defaults for zero
// config values.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}

	return &Breaker{
		config: config,
		state:  BreakerClosed,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
// Returns ErrBreakerOpen without calling fn when the circuit is open.
//
// ErrNoRoute does not count as a provider failure: a healthy provider
// legitimately finds no route between some coordinate pairs.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allowRequest() {
		return ErrBreakerOpen
	}

	err := fn()
	if errors.Is(err, ErrNoRoute) {
		b.recordResult(nil)
		return err
	}
	b.recordResult(err)
	return err
}

func (b *Breaker) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true

	case BreakerOpen:
		if time.Since(b.lastFailure) > b.config.OpenTimeout {
			b.transitionTo(BreakerHalfOpen)
			return true
		}
		return false

	case BreakerHalfOpen:
		return true

	default:
		return false
	}
}

func (b *Breaker) recordResult(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
}

func (b *Breaker) recordFailure() {
	b.failures++
	b.successes = 0
	b.lastFailure = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.config.FailureThreshold {
			b.transitionTo(BreakerOpen)
		}
	case BreakerHalfOpen:
		// Any failure in half-open goes back to open
		b.transitionTo(BreakerOpen)
	}
}

func (b *Breaker) recordSuccess() {
	b.successes++

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		if b.successes >= b.config.SuccessThreshold {
			b.failures = 0
			b.transitionTo(BreakerClosed)
		}
	}
}

func (b *Breaker) transitionTo(state BreakerState) {
	if b.state == state {
		return
	}

	old := b.state
	b.state = state

	if b.config.OnStateChange != nil {
		// Call callback without holding the lock to prevent deadlocks
		go b.config.OnStateChange(old, state)
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failures
}

// Reset forces the breaker back to closed, clearing all counts. Use
// when a provider outage has been fixed externally.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.state
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0

	if old != BreakerClosed && b.config.OnStateChange != nil {
		go b.config.OnStateChange(old, BreakerClosed)
	}
}
