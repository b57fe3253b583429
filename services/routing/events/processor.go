// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package events

import (
	"context"
	"fmt"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/decision"
)

// DefaultConfidenceThreshold is the minimum classification confidence
// for a report to influence routing.
const DefaultConfidenceThreshold = 0.75

// reportImpactRadiusMeters is the assumed extent of a classified event;
// reports carry no measured radius.
const reportImpactRadiusMeters = 500.0

// severityFor grades a classified event type for the decision engine.
var severityFor = map[string]datatypes.Severity{
	EventAccident:     datatypes.SeverityHigh,
	EventConstruction: datatypes.SeverityHigh,
	EventRoadblock:    datatypes.SeverityHigh,
	EventCongestion:   datatypes.SeverityMedium,
	EventCrowd:        datatypes.SeverityMedium,
}

// Outcome is the processor's answer for one report against one route.
type Outcome struct {
	Action         datatypes.Decision       `json:"action"`
	Reason         string                   `json:"reason"`
	Details        *datatypes.ImpactDetails `json:"details,omitempty"`
	Classification Prediction               `json:"classification"`
}

// Processor filters classified reports by confidence and routes the
// survivors through the decision engine.
type Processor struct {
	classifier Classifier
	engine     *decision.Engine
	threshold  float64
	logger     *logging.Logger
}

// NewProcessor wires a classifier to an engine. A nil classifier uses
// the keyword rules; a nil logger uses logging.Default().
func NewProcessor(classifier Classifier, engine *decision.Engine, logger *logging.Logger) *Processor {
	if classifier == nil {
		classifier = NewRuleClassifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Processor{
		classifier: classifier,
		engine:     engine,
		threshold:  DefaultConfidenceThreshold,
		logger:     logger,
	}
}

// ProcessReport classifies a report and evaluates it against the route.
//
// Filtered reports (no location, low confidence, clear traffic) come
// back as CONTINUE with the filter reason; only confident, located,
// non-clear events reach the decision engine.
func (p *Processor) ProcessReport(ctx context.Context, report Report, path geo.Path) (Outcome, error) {
	prediction, err := p.classifier.Classify(ctx, report)
	if err != nil {
		return Outcome{}, fmt.Errorf("classify report: %w", err)
	}
	p.logger.Info("report classified",
		"event_type", prediction.EventType, "confidence", prediction.Confidence)

	if prediction.Location == nil {
		return Outcome{
			Action:         datatypes.DecisionContinue,
			Reason:         "No location data associated with classified event",
			Classification: prediction,
		}, nil
	}

	if prediction.Confidence < p.threshold {
		p.logger.Info("report ignored, low confidence",
			"confidence", prediction.Confidence, "threshold", p.threshold)
		return Outcome{
			Action:         datatypes.DecisionContinue,
			Reason:         "Low classification confidence",
			Classification: prediction,
		}, nil
	}

	if prediction.EventType == EventClear {
		return Outcome{
			Action:         datatypes.DecisionContinue,
			Reason:         "Traffic detected as CLEAR",
			Classification: prediction,
		}, nil
	}

	severity, ok := severityFor[prediction.EventType]
	if !ok {
		severity = datatypes.SeverityLow
	}

	eval := p.engine.EvaluateImpact(path, datatypes.Event{
		Type:                 prediction.EventType,
		Location:             prediction.Location,
		Severity:             severity,
		AffectedRadiusMeters: reportImpactRadiusMeters,
	})

	return Outcome{
		Action:         eval.Decision,
		Reason:         eval.Reason,
		Details:        &eval.Details,
		Classification: prediction,
	}, nil
}
