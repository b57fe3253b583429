// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package webhooks

import (
	"fmt"
	"time"

	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/pkg/validation"
)

// Registry is the service layer over a Store: it validates
// registrations and matches notifications to subscriptions.
type Registry struct {
	store  Store
	logger *logging.Logger
}

// NewRegistry wires a registry to a store. A nil logger uses
// logging.Default().
func NewRegistry(store Store, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	return &Registry{store: store, logger: logger}
}

// Register validates and stores a new subscription.
func (r *Registry) Register(url string, eventTypes []string, secret, partnerName string) (Registration, error) {
	if err := validation.ValidateWebhookURL(url); err != nil {
		return Registration{}, fmt.Errorf("webhook url: %w", err)
	}
	if len(eventTypes) == 0 {
		return Registration{}, fmt.Errorf("at least one event type is required")
	}
	for _, t := range eventTypes {
		if !KnownEventType(t) {
			return Registration{}, fmt.Errorf("unknown event type %q", t)
		}
	}

	reg := Registration{
		ID:           NewID(),
		URL:          url,
		EventTypes:   eventTypes,
		Secret:       secret,
		PartnerName:  partnerName,
		RegisteredAt: time.Now().UTC(),
		Status:       "active",
	}
	if err := r.store.Add(reg); err != nil {
		return Registration{}, fmt.Errorf("store webhook: %w", err)
	}

	r.logger.Info("webhook registered",
		"webhook_id", reg.ID, "event_types", fmt.Sprintf("%v", eventTypes))
	return reg, nil
}

// List returns every stored registration.
func (r *Registry) List() ([]Registration, error) {
	return r.store.List()
}

// Delete removes a registration by id. Returns ErrNotFound when the id
// is unknown.
func (r *Registry) Delete(id string) error {
	if err := r.store.Delete(id); err != nil {
		return err
	}
	r.logger.Info("webhook deleted", "webhook_id", id)
	return nil
}

// Delivery records one intended notification to one subscriber.
type Delivery struct {
	WebhookID   string `json:"webhook_id"`
	URL         string `json:"url"`
	PartnerName string `json:"partner_name,omitempty"`
	Status      string `json:"status"`
}

// Notify matches eventType against the active subscriptions and records
// a delivery per match. No HTTP request is made; delivery status is
// always "sent".
func (r *Registry) Notify(eventType string, payload map[string]any, timestamp time.Time) ([]Delivery, error) {
	if !KnownEventType(eventType) {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	matching, err := r.store.Matching(eventType)
	if err != nil {
		return nil, fmt.Errorf("match webhooks: %w", err)
	}

	deliveries := make([]Delivery, 0, len(matching))
	for _, reg := range matching {
		deliveries = append(deliveries, Delivery{
			WebhookID:   reg.ID,
			URL:         reg.URL,
			PartnerName: reg.PartnerName,
			Status:      "sent",
		})
	}

	r.logger.Info("webhook notification recorded",
		"event_type", eventType, "notified", len(deliveries),
		"payload_fields", len(payload), "event_time", timestamp.Format(time.RFC3339))
	return deliveries, nil
}
