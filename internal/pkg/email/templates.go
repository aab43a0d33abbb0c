package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// StatusData is the data passed to the application status templates
type StatusData struct {
	Name   string
	Course string
	Sender string
}

// StatusTemplates renders the notification sent when an application's status changes.
// There is exactly one template per status.
type StatusTemplates struct {
	byStatus map[string]*template.Template
}

// NewStatusTemplates parses the embedded templates for every status
func NewStatusTemplates() (*StatusTemplates, error) {
	base, err := template.ParseFS(templateFS, "templates/base.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base email template: %w", err)
	}

	st := &StatusTemplates{byStatus: make(map[string]*template.Template)}
	for _, status := range []string{"pending", "approved", "rejected"} {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		tmpl, err := clone.ParseFS(templateFS, "templates/"+status+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s email template: %w", status, err)
		}
		st.byStatus[status] = tmpl.Option("missingkey=error")
	}
	return st, nil
}

// Render returns the subject and HTML body for the given status
func (st *StatusTemplates) Render(status string, data StatusData) (subject, body string, err error) {
	tmpl, ok := st.byStatus[status]
	if !ok {
		return "", "", fmt.Errorf("no email template for status %q", status)
	}

	var subj bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subj, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}

	var html bytes.Buffer
	if err := tmpl.ExecuteTemplate(&html, "layout", data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}

	return strings.TrimSpace(subj.String()), html.String(), nil
}
