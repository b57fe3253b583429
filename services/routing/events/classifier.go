// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package events bridges raw event reports to routing decisions.
//
// A Classifier turns a raw report into a typed traffic event with a
// confidence score; the Processor filters by confidence, maps the event
// type to a severity grade, and hands the result to the decision engine.
// Classification itself is an external concern behind the Classifier
// interface so that a real inference service can be swapped in without
// touching the processor.
package events

import (
	"context"
	"strings"

	"github.com/margsathi/margsathi/pkg/geo"
)

// Traffic event types a classifier can report.
const (
	EventAccident     = "Accident"
	EventCongestion   = "Congestion"
	EventCrowd        = "Crowd"
	EventClear        = "Clear"
	EventConstruction = "Construction"
	EventRoadblock    = "Roadblock"
)

// Report is a raw incoming event report before classification.
type Report struct {
	// Kind is the reporter's free-form description of what happened,
	// e.g. "multi car accident" or "road digging work".
	Kind string

	// Location is where the report was made, if known.
	Location *geo.Coordinate

	// Payload carries reporter-specific extras, passed through to the
	// classifier untouched.
	Payload map[string]any
}

// Prediction is a classified traffic event.
type Prediction struct {
	EventType  string          `json:"event_type"`
	Confidence float64         `json:"confidence"`
	Location   *geo.Coordinate `json:"location,omitempty"`
}

// Classifier turns a raw report into a typed prediction.
type Classifier interface {
	Classify(ctx context.Context, report Report) (Prediction, error)
}

// keywordRule maps a report keyword to an event type.
type keywordRule struct {
	keyword   string
	eventType string
}

// Keyword rules are checked in order; the first match wins.
var keywordRules = []keywordRule{
	{"accident", EventAccident},
	{"crash", EventAccident},
	{"collision", EventAccident},
	{"roadblock", EventRoadblock},
	{"blocked", EventRoadblock},
	{"closure", EventRoadblock},
	{"construction", EventConstruction},
	{"digging", EventConstruction},
	{"repair", EventConstruction},
	{"congestion", EventCongestion},
	{"jam", EventCongestion},
	{"traffic", EventCongestion},
	{"crowd", EventCrowd},
	{"rally", EventCrowd},
	{"protest", EventCrowd},
	{"procession", EventCrowd},
	{"clear", EventClear},
}

// RuleClassifier is a deterministic keyword classifier. It stands in
// for a real inference service: a recognized keyword classifies with
// high confidence, anything else comes back as low-confidence clear.
type RuleClassifier struct{}

// NewRuleClassifier creates the default keyword classifier.
func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

// Classify matches the report kind against the keyword rules.
func (c *RuleClassifier) Classify(ctx context.Context, report Report) (Prediction, error) {
	kind := strings.ToLower(report.Kind)
	for _, rule := range keywordRules {
		if strings.Contains(kind, rule.keyword) {
			return Prediction{
				EventType:  rule.eventType,
				Confidence: 0.9,
				Location:   report.Location,
			}, nil
		}
	}
	return Prediction{
		EventType:  EventClear,
		Confidence: 0.4,
		Location:   report.Location,
	}, nil
}
