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
	"github.com/margsathi/margsathi/services/routing/events"
)

// HandleReportEvent feeds a raw observation through the classifier and
// evaluates the result against the supplied route geometry.
func HandleReportEvent(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ReportEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		path, err := geo.Decode(req.Geometry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid route geometry: " + err.Error()})
			return
		}

		report := events.Report{Kind: req.Kind, Payload: req.Payload}
		if req.Location != nil {
			loc := req.Location.Coordinate()
			report.Location = &loc
		}

		outcome, err := deps.Processor.ProcessReport(c.Request.Context(), report, path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, outcome)
	}
}
