package schema

import "errors"

// Document wraps a raw schema payload, its origin and its encoding.
type Document struct {
	source Source
	format Format
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs. An
// auto format is resolved from the source location when possible.
func NewDocument(src Source, format Format, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	if format == FormatAuto {
		format = FormatFromPath(src.Location())
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, format: format, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, format Format, raw []byte) Document {
	doc, err := NewDocument(src, format, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Format returns the document encoding.
func (d Document) Format() Format {
	return d.format
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
