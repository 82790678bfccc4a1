package handlers

import (
	"net/http"
	"strings"

	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// friendlyMessage maps a handful of known upstream failure texts to messages a
// frontend can show verbatim. Everything else gets a generic message; the real
// error goes to the log, never to the client.
func friendlyMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "whitelist"):
		return "Database connection refused. The server's address may need to be whitelisted."
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "ENOTFOUND"):
		return "A dependent service could not be resolved. Check the configured hostnames."
	case strings.Contains(msg, "connection refused"):
		return "A dependent service is not reachable right now. Please try again shortly."
	default:
		return "Internal server error"
	}
}

// internalError logs the real error and answers with the friendly mapping.
func internalError(c *gin.Context, err error) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": friendlyMessage(err)})
}

// isValidationError distinguishes the services' input-rejection errors from
// genuine failures so handlers can answer 400 instead of 500.
func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "required") ||
		strings.Contains(msg, "no fields to update")
}
