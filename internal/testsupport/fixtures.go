package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// LoadSchema reads a schema fixture. Testing helpers fail the test on error to
// keep table setup concise.
func LoadSchema(t *testing.T, path string) *schema.Schema {
	t.Helper()

	doc, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return doc
}

// LoadSchemaFromPath returns a Schema without requiring testing.T.
func LoadSchemaFromPath(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, errors.New("testsupport: schema path is required")
	}
	doc, err := schema.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load schema: %w", err)
	}
	return doc, nil
}

// MustLoadModel reads a JSON model fixture.
func MustLoadModel(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal model: %v", err)
	}
	return out
}

// ProfileFields builds a three level tree used across package tests:
//
//	profile (group)
//	  name
//	  address (group, model "address")
//	    city (model "city")
//	    zip
//	  status (select)
//	terms
func ProfileFields() []*schema.Field {
	return []*schema.Field{
		{
			FieldID: "profile",
			Model:   "profile",
			Type:    schema.TypeGroup,
			Fields: []*schema.Field{
				{FieldID: "name", Model: "name", Label: "Name", Type: schema.TypeTextbox, Validator: schema.Validators("required")},
				{
					FieldID: "address",
					Model:   "address",
					Title:   "Address",
					Type:    schema.TypeGroup,
					Fields: []*schema.Field{
						{FieldID: "city", Model: "city", Label: "City", Type: schema.TypeTextbox, Validator: schema.Validators("required", "string")},
						{FieldID: "zip", Model: "zip", Label: "Zip", Type: schema.TypeTextbox},
					},
				},
				{
					FieldID: "status",
					Model:   "status",
					Label:   "Status",
					Type:    schema.TypeSelect,
					Values: []any{
						map[string]any{"id": 1, "name": "Active"},
						map[string]any{"id": 2, "name": "Locked"},
					},
				},
			},
		},
		{FieldID: "terms", Model: "terms", Title: "Terms", Type: schema.TypeCheckbox, Validator: schema.Validators("required")},
	}
}

// ProfileModel returns a model matching ProfileFields with a missing city.
func ProfileModel() map[string]any {
	return map[string]any{
		"profile": map[string]any{
			"name":    "Ada",
			"address": map[string]any{"zip": "10115"},
			"status":  1,
		},
		"terms": true,
	}
}

// Receive waits for a value on ch or fails the test after timeout.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()

	select {
	case value := <-ch:
		return value
	case <-time.After(timeout):
		var zero T
		t.Fatalf("timed out after %s waiting for value", timeout)
		return zero
	}
}

// Silent fails the test when ch yields a value within window.
func Silent[T any](t *testing.T, ch <-chan T, window time.Duration) {
	t.Helper()

	select {
	case value := <-ch:
		t.Fatalf("unexpected value %#v", value)
	case <-time.After(window):
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
