// Package swagger serves the OpenAPI description of the balance API.
package swagger

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml
var content embed.FS

// Handler serves openapi.yaml from the embedded filesystem.
func Handler() http.Handler {
	return http.FileServerFS(content)
}

// Document returns the raw OpenAPI document.
func Document() ([]byte, error) {
	return content.ReadFile("openapi.yaml")
}
