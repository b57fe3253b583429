// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/margsathi/margsathi/services/routing/webhooks"
)

// HandleRegisterWebhook registers a partner callback URL for event
// notifications.
func HandleRegisterWebhook(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL         string   `json:"url" binding:"required"`
			EventTypes  []string `json:"event_types" binding:"required,min=1"`
			Secret      string   `json:"secret,omitempty"`
			PartnerName string   `json:"partner_name,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reg, err := deps.Webhooks.Register(req.URL, req.EventTypes, req.Secret, req.PartnerName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"webhook_id":    reg.ID,
			"url":           reg.URL,
			"event_types":   reg.EventTypes,
			"registered_at": reg.RegisteredAt.Format(time.RFC3339),
			"status":        reg.Status,
			"message":       "Webhook registered successfully",
		})
	}
}

// HandleListWebhooks lists every registration.
func HandleListWebhooks(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		regs, err := deps.Webhooks.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": len(regs), "webhooks": regs})
	}
}

// HandleDeleteWebhook deletes a registration by id.
func HandleDeleteWebhook(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := deps.Webhooks.Delete(id); err != nil {
			if errors.Is(err, webhooks.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Webhook " + id + " not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Webhook " + id + " deleted successfully", "deleted": true})
	}
}

// HandleNotifyWebhooks records a notification to every subscriber of
// the event type.
func HandleNotifyWebhooks(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EventType string         `json:"event_type" binding:"required"`
			Payload   map[string]any `json:"payload" binding:"required"`
			Timestamp string         `json:"timestamp,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		timestamp := time.Now().UTC()
		if req.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
				timestamp = parsed
			}
		}

		deliveries, err := deps.Webhooks.Notify(req.EventType, req.Payload, timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"notified_count":    len(deliveries),
			"event_type":        req.EventType,
			"webhooks_notified": deliveries,
		})
	}
}
