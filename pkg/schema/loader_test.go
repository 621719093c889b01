package schema_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

func TestLoadFile_YAML(t *testing.T) {
	doc, err := schema.LoadFile("testdata/profile.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := len(doc.Fields); got != 3 {
		t.Fatalf("expected 3 top level fields, got %d", got)
	}

	name := doc.Fields[0]
	if name.FieldID != "name" || name.Model != "profile.name" || name.Type != schema.TypeTextbox {
		t.Fatalf("name field mismatch: %#v", name)
	}
	if len(name.Validator) != 2 || name.Validator[0].Name != "required" || name.Validator[1].Name != "string" {
		t.Fatalf("validators not parsed: %#v", name.Validator)
	}
	if !name.Required.Eval(nil, name, nil) {
		t.Fatalf("expected literal required attribute")
	}
	if name.ValidateDebounceTime == nil || *name.ValidateDebounceTime != 250*time.Millisecond {
		t.Fatalf("debounce mismatch: %v", name.ValidateDebounceTime)
	}

	status := doc.Fields[1]
	if status.ValueKey() != "code" || status.TextKey() != "title" {
		t.Fatalf("item keys mismatch: %s/%s", status.ValueKey(), status.TextKey())
	}
	if len(status.Values) != 2 {
		t.Fatalf("expected 2 choice values, got %d", len(status.Values))
	}

	group := doc.Fields[2]
	if !group.IsContainer() || len(group.Fields) != 1 {
		t.Fatalf("expected group with one child: %#v", group)
	}
	city := group.Fields[0]
	if city.Attrs["placeholder"] != "Berlin" {
		t.Fatalf("attrs not merged: %#v", city.Attrs)
	}
	if !city.Disabled.IsComputed() {
		t.Fatalf("expected computed disabled attribute")
	}
	locked := map[string]any{"profile": map[string]any{"status": "locked"}}
	if !city.Disabled.Eval(locked, city, nil) {
		t.Fatalf("expected disabled for locked profile")
	}
	active := map[string]any{"profile": map[string]any{"status": "active"}}
	if city.Disabled.Eval(active, city, nil) {
		t.Fatalf("expected enabled for active profile")
	}

	if len(doc.LookupFieldsList) != 1 || doc.LookupFieldsList[0].LookupAlterName != "statuses" {
		t.Fatalf("lookup list mismatch: %#v", doc.LookupFieldsList)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	doc, err := schema.LoadFile("testdata/profile.jsonc")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	age := doc.Fields[0]
	if age.Min == nil || *age.Min != 18 || age.Max == nil || *age.Max != 120 {
		t.Fatalf("min/max mismatch: %v %v", age.Min, age.Max)
	}
	if len(age.Validator) != 1 || age.Validator[0].Name != "integer" {
		t.Fatalf("single validator name not parsed: %#v", age.Validator)
	}

	terms := doc.Fields[1]
	if !terms.Readonly.IsSet() || terms.Readonly.IsComputed() || terms.Readonly.Eval(nil, terms, nil) {
		t.Fatalf("expected literal false readonly: %#v", terms.Readonly)
	}
	if !terms.Featured.Eval(map[string]any{"terms": true}, terms, nil) {
		t.Fatalf("expected $self rule to read the field model")
	}
	if terms.Featured.Eval(map[string]any{"terms": false}, terms, nil) {
		t.Fatalf("expected $self rule to be false")
	}
}

func TestLoadFile_TOML(t *testing.T) {
	doc, err := schema.LoadFile("testdata/profile.toml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := len(doc.Fields); got != 2 {
		t.Fatalf("expected 2 fields, got %d", got)
	}
	email := doc.Fields[0]
	if len(email.Validator) != 2 || email.Validator[1].Name != "email" {
		t.Fatalf("validators mismatch: %#v", email.Validator)
	}
	if email.ValidateDebounceTime == nil || *email.ValidateDebounceTime != 100*time.Millisecond {
		t.Fatalf("debounce mismatch: %v", email.ValidateDebounceTime)
	}
	spec := doc.LookupFieldsList[0]
	if !spec.SetModel || spec.LookupPath != "code" || spec.LookupProperty != "code" {
		t.Fatalf("lookup spec mismatch: %#v", spec)
	}
}

func TestLoadFS(t *testing.T) {
	doc, err := schema.LoadFS(os.DirFS("testdata"), "profile.yaml")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if len(doc.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(doc.Fields))
	}
}

func TestParse_AutoDetect(t *testing.T) {
	doc, err := schema.Parse([]byte("fields:\n  - fieldId: a\n    model: a\n"), schema.FormatAuto)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Fields[0].FieldID != "a" {
		t.Fatalf("unexpected field: %#v", doc.Fields[0])
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		data   string
		format schema.Format
	}{
		"empty":           {data: "  ", format: schema.FormatYAML},
		"wrong type":      {data: `{"fields":[{"fieldId":1}]}`, format: schema.FormatJSON},
		"bad rule":        {data: `{"fields":[{"fieldId":"a","disabled":"a = 1"}]}`, format: schema.FormatJSON},
		"bad children":    {data: `{"fields":[{"fieldId":"a","fields":["x"]}]}`, format: schema.FormatJSON},
		"empty lookup id": {data: `{"fields":[],"lookupFieldsList":[{"lookupAlterName":"x"}]}`, format: schema.FormatJSON},
	}
	for name, tc := range cases {
		if _, err := schema.Parse([]byte(tc.data), tc.format); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := schema.Parse([]byte("fields = []"), schema.Format("ini"))
	if !errors.Is(err, schema.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParse_CustomRuleCompiler(t *testing.T) {
	var compiled, evaluated []string
	compiler := visibility.CompilerFunc(func(rule string) (visibility.Rule, error) {
		compiled = append(compiled, rule)
		return visibility.RuleFunc(func(fieldPath string, ctx visibility.Context) (bool, error) {
			evaluated = append(evaluated, fieldPath+"|"+rule)
			return ctx.Extras["admin"] == true, nil
		}), nil
	})

	doc, err := schema.Parse(
		[]byte(`{"fields":[{"fieldId":"a","model":"a","readonly":"role"}]}`),
		schema.FormatJSON,
		schema.WithRuleCompiler(compiler),
	)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	field := doc.Fields[0]
	if !field.Readonly.Eval(nil, field, map[string]any{"admin": true}) {
		t.Fatalf("expected extras to reach the rule")
	}
	if field.Readonly.Eval(nil, field, nil) {
		t.Fatalf("expected rule to be false without extras")
	}
	if diff := cmp.Diff([]string{"role"}, compiled); diff != "" {
		t.Fatalf("expected a single compile at load (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a|role", "a|role"}, evaluated); diff != "" {
		t.Fatalf("evaluations mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RuleCompileError(t *testing.T) {
	compiler := visibility.CompilerFunc(func(rule string) (visibility.Rule, error) {
		return nil, errors.New("no rules here")
	})
	_, err := schema.Parse([]byte(`{"fields":[{"fieldId":"a","disabled":"x"}]}`), schema.FormatJSON, schema.WithRuleCompiler(compiler))
	if err == nil || !strings.Contains(err.Error(), "no rules here") {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]schema.Format{
		"a.json":  schema.FormatJSON,
		"a.JSONC": schema.FormatJSON,
		"a.yml":   schema.FormatYAML,
		"a.toml":  schema.FormatTOML,
		"a.txt":   schema.FormatAuto,
	}
	for path, want := range cases {
		if got := schema.FormatFromPath(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}
