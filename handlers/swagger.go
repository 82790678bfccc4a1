package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>claimsaver-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main API surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "claimsaver-api", "version": "v0.1.0" },
  "paths": {
    "/api/claims": {
      "get": { "summary": "List the caller's claims", "responses": { "200": { "description": "claims array" } } },
      "post": {
        "summary": "Submit a new claim",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"claimantName":{"type":"string"},"claimantEmail":{"type":"string"},"estimatedValue":{"type":"number"},"injuries":{}}}}}},
        "responses": { "201": { "description": "claim created" }, "400": { "description": "validation failure" } }
      }
    },
    "/api/claims/{id}": {
      "get": { "summary": "Get one of the caller's claims", "responses": { "200": { "description": "claim" }, "404": { "description": "not found / not owned" } } }
    },
    "/api/documents": {
      "get": { "summary": "List the caller's documents", "responses": { "200": { "description": "documents array" } } },
      "post": { "summary": "Upload a document (multipart)", "responses": { "201": { "description": "document created" }, "503": { "description": "storage not configured" } } }
    },
    "/api/documents/{id}/view": {
      "get": { "summary": "Stream the document inline", "responses": { "200": { "description": "bytes" } } }
    },
    "/api/documents/{id}/download": {
      "get": { "summary": "Download the document as attachment", "responses": { "200": { "description": "bytes" } } }
    },
    "/api/share-document": {
      "post": { "summary": "Email a signed share link for a document", "responses": { "200": { "description": "sent flag plus link" } } }
    },
    "/api/shared/{token}": {
      "get": { "summary": "Redeem a share link", "responses": { "200": { "description": "bytes" }, "401": { "description": "invalid or expired link" } } }
    },
    "/api/calendar": {
      "get": { "summary": "List the caller's events", "responses": { "200": { "description": "events array" } } },
      "post": { "summary": "Create an event", "responses": { "201": { "description": "event created" } } }
    },
    "/api/create-checkout-session": {
      "post": { "summary": "Create a payment checkout session", "responses": { "200": { "description": "session id and hosted URL" } } }
    },
    "/api/validate-session": {
      "post": { "summary": "Validate a checkout session", "responses": { "200": { "description": "session status" } } }
    },
    "/api/admin/users": {
      "get": { "summary": "List users (admin)", "responses": { "200": { "description": "page of users" }, "403": { "description": "admin access required" } } }
    },
    "/api/admin/claims": {
      "get": { "summary": "List claims (admin)", "responses": { "200": { "description": "page of claims" }, "403": { "description": "admin access required" } } }
    },
    "/api/webhooks/clerk": {
      "post": { "summary": "Identity provider webhook (signed)", "responses": { "200": { "description": "received" }, "400": { "description": "bad signature" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
