package batch

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// templateData is what a payload template renders against.
// Count is the 1-based send index; Timestamp is epoch milliseconds
// captured when the message is initiated.
type templateData struct {
	Count     int
	Timestamp int64
}

// PayloadTemplate renders per-message bodies, substituting {{.Count}}
// and {{.Timestamp}} tokens.
type PayloadTemplate struct {
	raw  string
	tmpl *template.Template // nil when raw has no tokens
}

// ParsePayload validates raw and returns a renderer for it. Malformed
// templates and unknown tokens are rejected here, before any batch
// starts.
func ParsePayload(raw string) (*PayloadTemplate, error) {
	if !strings.Contains(raw, "{{") {
		return &PayloadTemplate{raw: raw}, nil
	}

	tmpl, err := template.New("payload").Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid message template: %w", err)
	}

	// A trial render catches references to unknown fields, which only
	// fail at execution time.
	var sb strings.Builder
	if err := tmpl.Execute(&sb, templateData{Count: 1, Timestamp: 0}); err != nil {
		return nil, fmt.Errorf("invalid message template: %w", err)
	}

	return &PayloadTemplate{raw: raw, tmpl: tmpl}, nil
}

// Render produces the body for the given 1-based index.
func (p *PayloadTemplate) Render(index int) string {
	if p.tmpl == nil {
		return p.raw
	}
	var sb strings.Builder
	data := templateData{Count: index, Timestamp: time.Now().UnixMilli()}
	if err := p.tmpl.Execute(&sb, data); err != nil {
		// Validated at parse time; an execution failure here would be
		// a template package regression. Fall back to the raw text.
		return p.raw
	}
	return sb.String()
}
