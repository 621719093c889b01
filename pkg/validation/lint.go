package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// SchemaIssue is a problem found in a form definition, with the location of
// the offending entry when known.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaLintResult captures lint outcomes for a form definition.
type SchemaLintResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// LintOptions configures LintDocument.
type LintOptions struct {
	// Registry resolves validator names; nil uses the built-ins.
	Registry *Registry
	Load     []schema.LoadOption
}

var issueLocation = regexp.MustCompile(`\s((?:fields|lookupFieldsList)\[\d+\][^\s:]*):\s*`)

// LintDocument decodes raw and checks the resulting schema. Decode failures
// are reported as a single issue.
func LintDocument(src schema.Source, format schema.Format, raw []byte, opts LintOptions) SchemaLintResult {
	if src == nil {
		src = schema.SourceFromMemory("")
	}
	doc, err := schema.NewDocument(src, format, raw)
	if err != nil {
		return SchemaLintResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	s, err := schema.Decode(doc, opts.Load...)
	if err != nil {
		return SchemaLintResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return LintSchema(s, opts.Registry)
}

// LintSchema reports duplicate field ids, validator names missing from
// registry, unusable patterns and lookups that target unknown fields.
func LintSchema(s *schema.Schema, registry *Registry) SchemaLintResult {
	if registry == nil {
		registry = NewRegistry(nil)
	}
	result := SchemaLintResult{Valid: true}
	if s == nil {
		return result
	}

	l := &linter{registry: registry, seen: make(map[string]string)}
	l.walk(s.Fields, "fields")

	for idx, spec := range s.LookupFieldsList {
		if fieldtree.FindByID(s.Fields, spec.FieldID) == nil {
			l.add(SchemaIssue{
				Path:    fmt.Sprintf("lookupFieldsList[%d]", idx),
				Field:   spec.FieldID,
				Message: "lookup targets an unknown field",
			})
		}
		if spec.SetModel && spec.FieldPath == "" {
			l.add(SchemaIssue{
				Path:    fmt.Sprintf("lookupFieldsList[%d]", idx),
				Field:   spec.FieldID,
				Message: "setModel requires fieldPath",
			})
		}
	}

	if len(l.issues) > 0 {
		result.Valid = false
		result.Issues = l.issues
	}
	return result
}

type linter struct {
	registry *Registry
	seen     map[string]string
	issues   []SchemaIssue
}

func (l *linter) add(issue SchemaIssue) {
	l.issues = append(l.issues, issue)
}

func (l *linter) walk(fields []*schema.Field, at string) {
	for idx, field := range fields {
		if field == nil {
			continue
		}
		path := fmt.Sprintf("%s[%d]", at, idx)
		if field.FieldID != "" {
			if first, dup := l.seen[field.FieldID]; dup {
				l.add(SchemaIssue{Path: path, Field: field.FieldID, Message: "duplicate fieldId, first defined at " + first})
			} else {
				l.seen[field.FieldID] = path
			}
		}
		for _, ref := range field.Validator {
			if ref.Func != nil {
				continue
			}
			if _, ok := l.registry.Lookup(ref.Name); !ok {
				l.add(SchemaIssue{Path: path + ".validator", Field: field.FieldID, Message: fmt.Sprintf("unknown validator %q", ref.Name)})
			}
		}
		if field.Pattern != "" {
			if _, err := regexp.Compile(field.Pattern); err != nil {
				l.add(SchemaIssue{Path: path + ".pattern", Field: field.FieldID, Message: err.Error()})
			}
		}
		l.walk(field.Fields, path+".fields")
	}
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	msg := strings.TrimSpace(err.Error())
	var path string
	if loc := issueLocation.FindStringSubmatchIndex(msg); loc != nil {
		path = msg[loc[2]:loc[3]]
		msg = msg[loc[1]:]
	}
	msg = strings.TrimPrefix(msg, "schema: ")
	return SchemaIssue{Path: path, Message: strings.TrimSpace(msg)}
}
