// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/services/routing/datatypes"
)

// HandleEvaluateImpact runs a plain reroute/continue evaluation of an
// event against an existing route geometry. No detour is computed.
func HandleEvaluateImpact(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.EvaluateImpactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		path, err := geo.Decode(req.Geometry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid route geometry: " + err.Error()})
			return
		}

		eventLoc := req.EventLocation.Coordinate()
		eval := deps.Engine.EvaluateImpact(path, datatypes.Event{
			Type:                 req.EventType,
			Location:             &eventLoc,
			Severity:             datatypes.NormalizeSeverity(req.EventSeverity),
			AffectedRadiusMeters: req.EventRadiusMeters,
		})

		c.JSON(http.StatusOK, eval)
	}
}
