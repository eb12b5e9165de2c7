package controllers

import "github.com/gin-gonic/gin"

// All error responses share one shape so the dashboard can render a banner
// from any failed call: {"success": false, "error": "...", "details": {...}}.

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func respondInvalidParam(c *gin.Context, field, msg string) {
	c.JSON(422, gin.H{
		"success": false,
		"error":   msg,
		"details": gin.H{"field": field},
	})
}
