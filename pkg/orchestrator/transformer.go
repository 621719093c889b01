package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Transformer mutates a schema before its model is filled and checked.
// Implementations can relabel fields, tighten validators or inject attrs.
type Transformer interface {
	Transform(ctx context.Context, s *schema.Schema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, s *schema.Schema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, s *schema.Schema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, s)
}

// PresetTransformer applies declarative field patches loaded from a document.
// Patches are keyed by fieldId and hold any field property:
//
//	fields:
//	  email:
//	    label: E-mail
//	    validator: [required, email]
//	    required: true
//	    placeholder: you@example.com
//
// Properties the field record does not cover land in its attrs.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Fields map[string]map[string]any `json:"fields" yaml:"fields" toml:"fields"`
}

// NewPresetTransformer constructs a transformer from raw document bytes.
func NewPresetTransformer(data []byte, format schema.Format) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := schema.Unmarshal(data, format, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data, schema.FormatFromPath(path))
}

// NewPresetTransformerFromFile loads a preset document from disk.
func NewPresetTransformerFromFile(path string) (*PresetTransformer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data, schema.FormatFromPath(path))
}

// Transform applies the patches onto s in fieldId order.
func (t *PresetTransformer) Transform(ctx context.Context, s *schema.Schema) error {
	if s == nil {
		return errors.New("preset transformer: schema is nil")
	}

	ids := lo.Keys(t.document.Fields)
	sort.Strings(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		found, err := fieldtree.SetProps(s.Fields, id, t.document.Fields[id])
		if err != nil {
			return fmt.Errorf("preset transformer: field %q: %w", id, err)
		}
		if !found {
			return fmt.Errorf("preset transformer: field %q not found", id)
		}
	}
	return nil
}
