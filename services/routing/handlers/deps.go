// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP boundary of the routing service.
//
// Handlers are thin: they bind and validate requests, call into the
// decision engine, detour finder, event processor or webhook registry,
// and shape the response. No routing logic lives here.
package handlers

import (
	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/decision"
	"github.com/margsathi/margsathi/services/routing/detour"
	"github.com/margsathi/margsathi/services/routing/events"
	"github.com/margsathi/margsathi/services/routing/providers"
	"github.com/margsathi/margsathi/services/routing/webhooks"
)

// Deps carries the wired service components into the handlers.
type Deps struct {
	Engine    *decision.Engine
	Finder    *detour.Finder
	Gateway   *providers.Gateway
	Processor *events.Processor
	Webhooks  *webhooks.Registry
	Logger    *logging.Logger
}

func (d Deps) logger() *logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Default()
}
