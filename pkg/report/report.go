// Package report renders the outcome of a form check as text, HTML or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/summary"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("report: unknown format %q", name)
	}
}

// Report is the outcome of checking one model against one schema.
type Report struct {
	Title   string                   `json:"title"`
	Results []validation.Result      `json:"results"`
	Rows    []summary.Row            `json:"summary,omitempty"`
	Issues  []validation.SchemaIssue `json:"issues,omitempty"`

	// IDPrefix prefixes the anchors of HTML result rows.
	IDPrefix string `json:"-"`
}

// Invalid counts results with messages.
func (r Report) Invalid() int {
	return lo.CountBy(r.Results, func(result validation.Result) bool {
		return !result.Status.Valid()
	})
}

// Valid reports whether every result passed and the schema has no issues.
func (r Report) Valid() bool {
	return r.Invalid() == 0 && len(r.Issues) == 0
}

func (r Report) context() map[string]any {
	results := lo.Map(r.Results, func(result validation.Result, _ int) any {
		label := result.Label
		if label == "" {
			label = result.ID
		}
		anchor := schema.FieldDOMID(&schema.Field{FieldID: result.ID, Label: result.Label, Model: result.Model}, r.IDPrefix, false)
		return map[string]any{
			"id":     result.ID,
			"anchor": anchor,
			"model":  result.Model,
			"label":  label,
			"valid":  result.Status.Valid(),
			"errors": lo.ToAnySlice([]string(result.Status)),
		}
	})
	rows := lo.Map(r.Rows, func(row summary.Row, _ int) any {
		label := row.Label
		if label == "" {
			label = row.ID
		}
		return map[string]any{"id": row.ID, "label": label, "path": row.Path, "value": row.Value}
	})
	issues := lo.Map(r.Issues, func(issue validation.SchemaIssue, _ int) any {
		return map[string]any{"path": issue.Path, "field": issue.Field, "message": issue.Message}
	})

	verdict := "all fields valid"
	if invalid := r.Invalid(); invalid > 0 {
		verdict = fmt.Sprintf("%d of %d fields invalid", invalid, len(r.Results))
	}
	if len(r.Issues) > 0 {
		verdict = fmt.Sprintf("%s, %d schema issues", verdict, len(r.Issues))
	}

	return map[string]any{
		"title":   r.Title,
		"results": results,
		"rows":    rows,
		"issues":  issues,
		"valid":   r.Valid(),
		"verdict": verdict,
	}
}

// Write renders report to w in format. Text and HTML use the "text" and
// "html" templates of the engine.
func (e *Engine) Write(w io.Writer, format Format, report Report) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		return nil
	}
	if format == "" {
		format = FormatText
	}
	_, err := e.RenderTemplate(string(format), report.context(), w)
	return err
}
