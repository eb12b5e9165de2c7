package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chmgroup/mediahub-backend/services"
)

// The chatbot runs as a separate service; these handlers proxy to it so the
// browser only ever talks to this API. Upstream failures surface as 502 with
// a generic message, details go to the log.

type ChatQueryInput struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id"`
}

func ChatQuery(c *gin.Context) {
	var input ChatQueryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "question is required")
		return
	}

	payload := map[string]interface{}{
		"question": input.Question,
		"user_id":  c.MustGet("user_id").(string),
	}
	if input.SessionID != "" {
		payload["session_id"] = input.SessionID
	}

	result, err := services.ChatbotQuery(payload)
	if err != nil {
		logrus.WithError(err).Error("chatbot query failed")
		respondError(c, http.StatusBadGateway, "Chatbot is unavailable")
		return
	}
	c.JSON(http.StatusOK, result)
}

func ChatHealth(c *gin.Context) {
	result, err := services.ChatbotGet("/health")
	if err != nil {
		logrus.WithError(err).Warn("chatbot health check failed")
		respondError(c, http.StatusBadGateway, "Chatbot is unavailable")
		return
	}
	c.JSON(http.StatusOK, result)
}

func ChatSources(c *gin.Context) {
	result, err := services.ChatbotGet("/sources")
	if err != nil {
		logrus.WithError(err).Error("chatbot sources fetch failed")
		respondError(c, http.StatusBadGateway, "Chatbot is unavailable")
		return
	}
	c.JSON(http.StatusOK, result)
}
