package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// QualifiedLeadData fills the qualified-lead notification template.
type QualifiedLeadData struct {
	Name    string
	Email   string
	Phone   string
	Score   int
	Reasons []string
	LeadURL string
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
