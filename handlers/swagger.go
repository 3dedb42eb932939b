package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>securedocs — Swagger</title>
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

// Minimal OpenAPI document describing the document workflow endpoints.
var swaggerJSON = gin.H{
	"openapi": "3.0.0",
	"info":    gin.H{"title": "securedocs", "version": "v0.1.0"},
	"paths": gin.H{
		"/api/documents": gin.H{
			"post": gin.H{
				"summary":   "Register a document with an optional initial signer list",
				"responses": gin.H{"201": gin.H{"description": "committed document"}, "400": gin.H{"description": "missing title or contentRef"}},
			},
			"get": gin.H{
				"summary":   "List documents where an identity is an allowed signer",
				"responses": gin.H{"200": gin.H{"description": "document summaries"}},
			},
		},
		"/api/documents/{id}": gin.H{
			"get": gin.H{"summary": "Fetch a document", "responses": gin.H{"200": gin.H{"description": "document"}, "404": gin.H{"description": "not found"}}},
		},
		"/api/documents/{id}/signers": gin.H{
			"post": gin.H{"summary": "Authorize a signer (owner only)", "responses": gin.H{"200": gin.H{"description": "committed document"}, "403": gin.H{"description": "not the owner"}, "409": gin.H{"description": "already an allowed signer"}}},
		},
		"/api/documents/{id}/signers/import": gin.H{
			"post": gin.H{"summary": "Bulk add signers from CSV (owner only)", "responses": gin.H{"200": gin.H{"description": "per-row results"}}},
		},
		"/api/documents/{id}/signers/{address}": gin.H{
			"delete": gin.H{"summary": "Revoke a signer; recorded signatures are retained", "responses": gin.H{"200": gin.H{"description": "committed document"}}},
		},
		"/api/documents/{id}/signatures": gin.H{
			"post": gin.H{"summary": "Sign as the authenticated identity", "responses": gin.H{"200": gin.H{"description": "committed document"}, "403": gin.H{"description": "not an allowed signer"}, "409": gin.H{"description": "already signed"}}},
		},
		"/api/documents/{id}/content": gin.H{
			"get": gin.H{"summary": "Presigned URL for the document content", "responses": gin.H{"200": gin.H{"description": "url"}}},
		},
		"/api/uploads": gin.H{
			"post": gin.H{"summary": "Upload content, returns its contentRef", "responses": gin.H{"201": gin.H{"description": "contentRef"}}},
		},
		"/api/submissions/{id}": gin.H{
			"get": gin.H{"summary": "Ledger submission receipt", "responses": gin.H{"200": gin.H{"description": "receipt"}, "404": gin.H{"description": "unknown submission"}}},
		},
		"/auth/token": gin.H{
			"post": gin.H{"summary": "Mint a dev wallet token (insecure mode only)", "responses": gin.H{"200": gin.H{"description": "token"}}},
		},
		"/health": gin.H{"get": gin.H{"summary": "Liveness check", "responses": gin.H{"200": gin.H{"description": "healthy"}}}},
		"/ready":  gin.H{"get": gin.H{"summary": "Readiness check", "responses": gin.H{"200": gin.H{"description": "ready"}, "503": gin.H{"description": "not ready"}}}},
	},
}
