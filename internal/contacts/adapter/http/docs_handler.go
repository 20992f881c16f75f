package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed docs/openapi.json
var openAPIDocument []byte

const docsViewerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Contacts API</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/api-docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`

// DocsHandler serves the OpenAPI document and an HTML viewer for it
type DocsHandler struct{}

// NewDocsHandler creates a new DocsHandler
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// RegisterRoutes mounts /api-docs and /api-docs/openapi.json
func (h *DocsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/api-docs/openapi.json", h.GetOpenAPIJSON)
	router.Get("/api-docs", h.GetOpenAPIHTML)
}

// GetOpenAPIJSON returns the embedded OpenAPI 3 document
func (h *DocsHandler) GetOpenAPIJSON(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(openAPIDocument)
}

// GetOpenAPIHTML returns the Swagger UI page
func (h *DocsHandler) GetOpenAPIHTML(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(docsViewerHTML)
}
