package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>wapangaji-kiganjani — Swagger</title>
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

// Minimal OpenAPI document covering the primary endpoints. Kept hand-written
// so the binary carries no codegen tooling.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "wapangaji-kiganjani", "version": "v0.1.0" },
  "paths": {
    "/auth/register": {
      "post": { "summary": "Register a landlord account (sends OTP)", "responses": { "201": { "description": "verification code sent" }, "409": { "description": "phone already registered" } } }
    },
    "/auth/verify-otp": {
      "post": { "summary": "Verify registration OTP and activate account", "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid or expired code" } } }
    },
    "/auth/login": {
      "post": { "summary": "Phone + password login", "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" }, "403": { "description": "account not verified" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/auth/password-reset": {
      "post": { "summary": "Start OTP-gated password reset", "responses": { "200": { "description": "code sent when the number is registered" } } }
    },
    "/me": {
      "get": { "summary": "Profile of the authenticated user", "responses": { "200": { "description": "user" } } }
    },
    "/properties": {
      "get": { "summary": "List the caller's properties", "responses": { "200": { "description": "properties" } } },
      "post": { "summary": "Create a property", "responses": { "201": { "description": "property created" } } }
    },
    "/properties/{id}/floors": {
      "post": { "summary": "Add a floor and generate its units", "responses": { "201": { "description": "floor and units" } } }
    },
    "/properties/{id}/summary": {
      "get": { "summary": "Unit counts per status and occupancy rate", "responses": { "200": { "description": "summary" } } }
    },
    "/tenants": {
      "get": { "summary": "Search and page tenants", "responses": { "200": { "description": "tenants" } } },
      "post": { "summary": "Create a tenant", "responses": { "201": { "description": "tenant created" } } }
    },
    "/tenants/assign": {
      "post": { "summary": "Assign a tenant to a unit", "responses": { "201": { "description": "occupancy created" }, "409": { "description": "unit already occupied" } } }
    },
    "/occupancies/{id}/vacate": {
      "post": { "summary": "End an occupancy and free its unit", "responses": { "200": { "description": "occupancy ended" } } }
    },
    "/notifications": {
      "get": { "summary": "List in-app notifications", "responses": { "200": { "description": "notifications" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
