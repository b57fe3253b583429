// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package providers

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/observability"
)

var gatewayTracer = otel.Tracer("margsathi/providers")

// Result is a successful route fetch tagged with the provider that
// produced it and how far down the fallback chain the gateway went.
type Result struct {
	Route         *Route
	Provider      string
	FallbackDepth int
}

// Gateway fans a route request out across an ordered chain of routing
// providers. Providers are tried one at a time: any error, open
// breaker, or empty result from one provider advances to the next, and
// only when every eligible provider has failed does the gateway return
// ErrAllProvidersExhausted.
//
// # Capability Filtering
//
// When a request carries avoid points, providers that cannot express
// point exclusion are filtered out before dispatch. They are never
// called and never counted as failures.
//
// # Thread Safety
//
// Gateway is safe for concurrent use. Breakers and limiters are
// per-provider and internally synchronized.
type Gateway struct {
	chain    []Provider
	breakers map[string]*Breaker
	limiters map[string]*rate.Limiter
	logger   *logging.Logger
}

// GatewayOptions tunes gateway construction.
type GatewayOptions struct {
	// Breaker is the per-provider breaker configuration. Zero values
	// take the breaker defaults.
	Breaker BreakerConfig

	// RequestsPerSecond caps the per-provider call rate. Zero means
	// no limiting.
	RequestsPerSecond float64

	// Logger defaults to logging.Default() when nil.
	Logger *logging.Logger
}

// NewGateway creates a gateway over the given provider chain. The
// slice order is the fallback priority order.
func NewGateway(chain []Provider, opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	g := &Gateway{
		chain:    chain,
		breakers: make(map[string]*Breaker, len(chain)),
		limiters: make(map[string]*rate.Limiter, len(chain)),
		logger:   logger,
	}
	for _, p := range chain {
		name := p.Name()
		cfg := opts.Breaker
		cfg.OnStateChange = func(from, to BreakerState) {
			logger.Warn("provider breaker state change",
				"provider", name, "from", from.String(), "to", to.String())
		}
		g.breakers[name] = NewBreaker(cfg)
		if opts.RequestsPerSecond > 0 {
			g.limiters[name] = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		}
	}
	return g
}

// FetchRoute tries each eligible provider in order until one returns a
// route.
//
// # Inputs
//
//   - ctx: Cancels in-flight provider calls and limiter waits
//   - req: The route request; AvoidPoints triggers capability filtering
//   - preferred: Provider name to try first, or empty for chain order
//
// # Outputs
//
//   - *Result: The route tagged with the satisfying provider
//   - error: ErrAllProvidersExhausted when no eligible provider succeeds
func (g *Gateway) FetchRoute(ctx context.Context, req Request, preferred string) (*Result, error) {
	ctx, span := gatewayTracer.Start(ctx, "gateway.fetch_route",
		trace.WithAttributes(attribute.String("gateway.preferred", preferred)))
	defer span.End()

	eligible := g.eligible(req, preferred)
	span.SetAttributes(attribute.Int("gateway.eligible_providers", len(eligible)))

	for depth, p := range eligible {
		route, err := g.callProvider(ctx, p, req)
		if err != nil {
			g.logger.Warn("provider failed, advancing",
				"provider", p.Name(), "depth", depth, "error", err)
			continue
		}

		span.SetAttributes(
			attribute.String("gateway.provider", p.Name()),
			attribute.Int("gateway.fallback_depth", depth),
		)
		observability.FallbackDepth.Observe(float64(depth))
		return &Result{Route: route, Provider: p.Name(), FallbackDepth: depth}, nil
	}

	observability.GatewayExhaustions.Inc()
	return nil, fmt.Errorf("gateway: %d eligible providers tried: %w",
		len(eligible), ErrAllProvidersExhausted)
}

// eligible builds the dispatch order: configured providers only,
// capability-filtered when avoid points are present, preferred first.
func (g *Gateway) eligible(req Request, preferred string) []Provider {
	needsAvoidance := len(req.AvoidPoints) > 0

	ordered := make([]Provider, 0, len(g.chain))
	var front *Provider
	for i := range g.chain {
		p := g.chain[i]
		if !p.Configured() {
			continue
		}
		if needsAvoidance && !p.SupportsAvoidance() {
			continue
		}
		if preferred != "" && p.Name() == preferred && front == nil {
			front = &g.chain[i]
			continue
		}
		ordered = append(ordered, p)
	}
	if front != nil {
		ordered = append([]Provider{*front}, ordered...)
	}
	return ordered
}

// callProvider funnels one provider call through its rate limiter and
// circuit breaker, recording latency and outcome metrics.
func (g *Gateway) callProvider(ctx context.Context, p Provider, req Request) (*Route, error) {
	name := p.Name()

	if limiter, ok := g.limiters[name]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var route *Route
	start := time.Now()
	err := g.breakers[name].Execute(func() error {
		var fetchErr error
		route, fetchErr = p.FetchRoute(ctx, req)
		return fetchErr
	})
	observability.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case route == nil || route.Geometry == "":
		outcome = "empty"
		err = ErrNoRoute
	}
	observability.ProviderRequests.WithLabelValues(name, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return route, nil
}

// ProviderStatus is a point-in-time view of one provider, safe to
// expose over the status endpoint. No credentials are included.
type ProviderStatus struct {
	Name              string `json:"name"`
	Configured        bool   `json:"configured"`
	SupportsAvoidance bool   `json:"supports_avoidance"`
	BreakerState      string `json:"breaker_state"`
	Failures          int    `json:"consecutive_failures"`
}

// Status reports the state of every provider in chain order.
func (g *Gateway) Status() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(g.chain))
	for _, p := range g.chain {
		b := g.breakers[p.Name()]
		statuses = append(statuses, ProviderStatus{
			Name:              p.Name(),
			Configured:        p.Configured(),
			SupportsAvoidance: p.SupportsAvoidance(),
			BreakerState:      b.State().String(),
			Failures:          b.Failures(),
		})
	}
	return statuses
}
