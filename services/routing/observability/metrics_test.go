// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConstants(t *testing.T) {
	if metricsNamespace != "margsathi" {
		t.Errorf("expected namespace margsathi, got %s", metricsNamespace)
	}
	if routingSubsystem != "routing" {
		t.Errorf("expected subsystem routing, got %s", routingSubsystem)
	}
}

func TestProviderRequests_Labels(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequests.WithLabelValues("mapbox", "success"))
	ProviderRequests.WithLabelValues("mapbox", "success").Inc()
	after := testutil.ToFloat64(ProviderRequests.WithLabelValues("mapbox", "success"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(Decisions.WithLabelValues("REROUTE"))
	RecordDecision("REROUTE")
	RecordDecision("REROUTE")
	after := testutil.ToFloat64(Decisions.WithLabelValues("REROUTE"))
	if after != before+2 {
		t.Errorf("expected counter to increase by 2, got %f -> %f", before, after)
	}
}

func TestRecordDetourAttempt(t *testing.T) {
	for _, outcome := range []string{DetourAccepted, DetourRejected, DetourProviderFailed} {
		before := testutil.ToFloat64(DetourAttempts.WithLabelValues(outcome))
		RecordDetourAttempt(outcome)
		after := testutil.ToFloat64(DetourAttempts.WithLabelValues(outcome))
		if after != before+1 {
			t.Errorf("outcome %s: expected increase by 1, got %f -> %f", outcome, before, after)
		}
	}
}

func TestRecordDetourSearch(t *testing.T) {
	before := testutil.ToFloat64(DetourSearches.WithLabelValues(SearchSkipped))
	RecordDetourSearch(SearchSkipped)
	after := testutil.ToFloat64(DetourSearches.WithLabelValues(SearchSkipped))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestGatewayExhaustions(t *testing.T) {
	before := testutil.ToFloat64(GatewayExhaustions)
	GatewayExhaustions.Inc()
	after := testutil.ToFloat64(GatewayExhaustions)
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %f -> %f", before, after)
	}
}
