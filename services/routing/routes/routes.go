// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/margsathi/margsathi/services/routing/handlers"
)

// SetupRoutes registers every endpoint of the routing service.
func SetupRoutes(router *gin.Engine, deps handlers.Deps) {
	router.GET("/health", handlers.HandleHealth())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		routesGroup := v1.Group("/routes")
		{
			routesGroup.POST("/suggest", handlers.HandleSuggestRoute(deps))
			routesGroup.POST("/recalculate", handlers.HandleRecalculateRoute(deps))
			routesGroup.POST("/evaluate", handlers.HandleEvaluateImpact(deps))
		}

		v1.GET("/providers/status", handlers.HandleProviderStatus(deps))
		v1.POST("/events/report", handlers.HandleReportEvent(deps))

		// Partner notification routes
		webhooksGroup := v1.Group("/webhooks")
		{
			webhooksGroup.POST("/register", handlers.HandleRegisterWebhook(deps))
			webhooksGroup.GET("/list", handlers.HandleListWebhooks(deps))
			webhooksGroup.POST("/notify", handlers.HandleNotifyWebhooks(deps))
			webhooksGroup.DELETE("/:id", handlers.HandleDeleteWebhook(deps))
		}
	}
}
