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
)

// HandleHealth reports liveness.
func HandleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "routing",
		})
	}
}

// HandleProviderStatus reports the per-provider gateway state for
// debugging and monitoring. API keys are never exposed.
func HandleProviderStatus(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := deps.Gateway.Status()
		chain := make([]string, 0, len(statuses))
		configured := 0
		for _, s := range statuses {
			chain = append(chain, s.Name)
			if s.Configured {
				configured++
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"providers":        statuses,
			"fallback_chain":   chain,
			"configured_count": configured,
		})
	}
}
