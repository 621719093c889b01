package schema

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugSeparators = regexp.MustCompile(`[ _]+`)
	slugRepeats    = regexp.MustCompile(`-{2,}`)
	slugInvalid    = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
)

// FieldDOMID builds the identifier a rendering layer uses for the field. The
// FieldID wins when present; otherwise the label or model path is slugified.
// When unique is set a random suffix keeps repeated renders apart.
func FieldDOMID(field *Field, prefix string, unique bool) string {
	if field == nil {
		return prefix
	}

	id := prefix
	if field.FieldID != "" {
		id += field.FieldID
	} else {
		source := field.Label
		if source == "" {
			source = field.Model
		}
		id += slugify(source)
	}

	if unique {
		id += "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	return id
}

func slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugRepeats.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
