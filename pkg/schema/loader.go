package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formengine/pkg/visibility"
	"github.com/goliatone/go-formengine/pkg/visibility/expr"
)

// Format names a schema document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	// FormatAuto tries JSON first, then YAML.
	FormatAuto Format = ""
)

// ErrUnsupportedFormat is returned for formats the loader cannot decode.
var ErrUnsupportedFormat = errors.New("schema: unsupported format")

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

// LoadOption customises decoding.
type LoadOption func(*loader)

// WithRuleCompiler sets the compiler used for attribute rule strings such
// as `disabled: "status == \"locked\""`.
func WithRuleCompiler(compiler visibility.Compiler) LoadOption {
	return func(l *loader) {
		if compiler != nil {
			l.rules = compiler
		}
	}
}

type loader struct {
	rules visibility.Compiler
}

func newLoader(opts []LoadOption) *loader {
	l := &loader{rules: expr.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

type documentFile struct {
	Fields           []map[string]any `json:"fields" yaml:"fields" toml:"fields"`
	LookupFieldsList []LookupSpec     `json:"lookupFieldsList" yaml:"lookupFieldsList" toml:"lookupFieldsList"`
}

// LoadFile reads a schema document from disk.
func LoadFile(path string, opts ...LoadOption) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), FormatAuto, data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return Decode(doc, opts...)
}

// LoadFS reads a schema document from fsys.
func LoadFS(fsys fs.FS, path string, opts ...LoadOption) (*Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: nil filesystem for %s", path)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFS(path), FormatAuto, data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return Decode(doc, opts...)
}

// Parse decodes a schema document held in memory.
func Parse(data []byte, format Format, opts ...LoadOption) (*Schema, error) {
	doc, err := NewDocument(SourceFromMemory(""), format, data)
	if err != nil {
		return nil, err
	}
	return Decode(doc, opts...)
}

// Decode builds a schema from a document.
func Decode(doc Document, opts ...LoadOption) (*Schema, error) {
	source := doc.Location()
	raw, err := parseDocument(doc.Raw(), doc.Format(), source)
	if err != nil {
		return nil, err
	}

	l := newLoader(opts)
	fields, err := l.fields(raw.Fields, source, "fields")
	if err != nil {
		return nil, err
	}

	for idx, spec := range raw.LookupFieldsList {
		if strings.TrimSpace(spec.FieldID) == "" {
			return nil, fmt.Errorf("schema: %s lookupFieldsList[%d] has an empty fieldId", source, idx)
		}
	}

	return &Schema{Fields: fields, LookupFieldsList: raw.LookupFieldsList}, nil
}

func parseDocument(data []byte, format Format, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}
	if err := Unmarshal(data, format, &doc); err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return documentFile{}, fmt.Errorf("%w (file %s)", err, source)
		}
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

// Unmarshal decodes data in format into v. JSON input may carry comments and
// trailing commas. FormatAuto tries JSON, then YAML.
func Unmarshal(data []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(jsonc.ToJSON(data), v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	case FormatAuto:
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err == nil {
			return nil
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.New("invalid JSON or YAML")
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

func (l *loader) fields(raw []map[string]any, source, at string) ([]*Field, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]*Field, 0, len(raw))
	for idx, entry := range raw {
		field, err := l.field(entry, source, fmt.Sprintf("%s[%d]", at, idx))
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (l *loader) field(raw map[string]any, source, at string) (*Field, error) {
	field := &Field{}
	for key, value := range raw {
		var err error
		switch key {
		case PropFields:
			var children []map[string]any
			children, err = childMaps(value)
			if err == nil {
				// Nested errors already carry their full location.
				if field.Fields, err = l.fields(children, source, at+".fields"); err != nil {
					return nil, err
				}
			}
		case PropDisabled, PropReadonly, PropFeatured, PropRequired:
			var attr Attr
			attr, err = l.attr(value)
			if err == nil {
				err = field.SetProp(key, attr)
			}
		case "attrs":
			extra, ok := value.(map[string]any)
			if !ok {
				err = fmt.Errorf("attrs must be a mapping, got %T", value)
				break
			}
			for name, item := range extra {
				if field.Attrs == nil {
					field.Attrs = make(map[string]any, len(extra))
				}
				field.Attrs[name] = item
			}
		default:
			err = field.SetProp(key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("schema: %s %s.%s: %w", source, at, key, err)
		}
	}
	return field, nil
}

func (l *loader) attr(value any) (Attr, error) {
	rule, ok := value.(string)
	if !ok {
		attr, ok := toAttr(value)
		if !ok {
			return Attr{}, fmt.Errorf("expected bool or rule string, got %T", value)
		}
		return attr, nil
	}

	rule = strings.TrimSpace(rule)
	if flag, err := strconv.ParseBool(rule); err == nil {
		return Literal(flag), nil
	}
	compiled, err := l.rules.Compile(rule)
	if err != nil {
		return Attr{}, err
	}

	return Computed(func(model map[string]any, field *Field, ctx any) bool {
		extras, _ := ctx.(map[string]any)
		path := ""
		if field != nil {
			path = field.Model
		}
		ok, err := compiled.Eval(path, visibility.Context{Values: model, Extras: extras})
		return err == nil && ok
	}), nil
}

func childMaps(value any) ([]map[string]any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return typed, nil
	case []any:
		out := make([]map[string]any, 0, len(typed))
		for idx, item := range typed {
			child, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("child %d must be a mapping, got %T", idx, item)
			}
			out = append(out, child)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of fields, got %T", value)
	}
}
