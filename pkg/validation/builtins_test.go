package validation_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formengine/internal/testsupport"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

func float(v float64) *float64 { return &v }

func TestBuiltinValidators(t *testing.T) {
	registry := validation.NewRegistry(nil)
	ctx := testsupport.Context()

	cases := []struct {
		name      string
		validator string
		field     *schema.Field
		value     any
		wantErrs  int
	}{
		{name: "required empty", validator: "required", value: "", wantErrs: 1},
		{name: "required nil", validator: "required", value: nil, wantErrs: 1},
		{name: "required set", validator: "required", value: "x", wantErrs: 0},
		{name: "number ok", validator: "number", value: 3, wantErrs: 0},
		{name: "number string", validator: "number", value: "3", wantErrs: 1},
		{name: "number empty optional", validator: "number", value: nil, wantErrs: 0},
		{name: "number empty required", validator: "number", field: &schema.Field{Required: schema.Literal(true)}, value: nil, wantErrs: 1},
		{name: "number bounds", validator: "number", field: &schema.Field{Min: float(5), Max: float(6)}, value: 2.5, wantErrs: 1},
		{name: "integer fraction", validator: "integer", value: 2.5, wantErrs: 1},
		{name: "integer json float", validator: "integer", value: float64(4), wantErrs: 0},
		{name: "double ok", validator: "double", value: 1.25, wantErrs: 0},
		{name: "double text", validator: "double", value: "x", wantErrs: 1},
		{name: "string ok", validator: "string", field: &schema.Field{Min: float(2), Max: float(4)}, value: "abc", wantErrs: 0},
		{name: "string too short", validator: "string", field: &schema.Field{Min: float(2)}, value: "é", wantErrs: 1},
		{name: "string too long", validator: "string", field: &schema.Field{Max: float(2)}, value: "abc", wantErrs: 1},
		{name: "string wrong type", validator: "string", value: 3, wantErrs: 1},
		{name: "array ok", validator: "array", value: []any{1, 2}, wantErrs: 0},
		{name: "array wrong type", validator: "array", value: "x", wantErrs: 1},
		{name: "array min items", validator: "array", field: &schema.Field{Min: float(3)}, value: []string{"a"}, wantErrs: 1},
		{name: "array max items", validator: "array", field: &schema.Field{Max: float(1)}, value: []int{1, 2}, wantErrs: 1},
		{name: "regexp match", validator: "regexp", field: &schema.Field{Pattern: `^\d{5}$`}, value: "10115", wantErrs: 0},
		{name: "regexp mismatch", validator: "regexp", field: &schema.Field{Pattern: `^\d{5}$`}, value: "1011", wantErrs: 1},
		{name: "regexp invalid", validator: "regexp", field: &schema.Field{Pattern: `(`}, value: "x", wantErrs: 1},
		{name: "email ok", validator: "email", value: "ada@example.com", wantErrs: 0},
		{name: "email bad", validator: "email", value: "ada@", wantErrs: 1},
		{name: "url ok", validator: "url", value: "https://example.com/path", wantErrs: 0},
		{name: "url bad", validator: "url", value: "not a url", wantErrs: 1},
		{name: "alpha ok", validator: "alpha", value: "Ada", wantErrs: 0},
		{name: "alpha digits", validator: "alpha", value: "Ada1", wantErrs: 1},
		{name: "alphaNumeric ok", validator: "alphaNumeric", value: "Ada1", wantErrs: 0},
		{name: "alphaNumeric special", validator: "alphaNumeric", value: "Ada-1", wantErrs: 1},
	}

	v := newValidator(t, validation.Options{}, validation.WithRegistry(registry))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			field := tc.field
			if field == nil {
				field = &schema.Field{}
			}
			field.FieldID = tc.name
			field.Validator = schema.Validators(tc.validator)

			errs, err := v.Validate(ctx, field, tc.value, nil, true)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(errs) != tc.wantErrs {
				t.Fatalf("expected %d errors, got %v", tc.wantErrs, errs)
			}
		})
	}
}

func TestRegistryRegisterAndNames(t *testing.T) {
	registry := validation.NewRegistry(nil)
	if _, ok := registry.Lookup("email"); !ok {
		t.Fatalf("expected built-in email validator")
	}
	registry.Register("  ", nil)
	registry.Register("custom", func(_ context.Context, _ any, _ *schema.Field, _ map[string]any) any { return nil })
	if _, ok := registry.Lookup("custom"); !ok {
		t.Fatalf("expected custom validator")
	}
	names := registry.Names()
	if len(names) != 12 || names[0] != "alpha" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestMessagesLocale(t *testing.T) {
	messages, err := validation.NewMessages("de", "testdata/active.de.toml")
	if err != nil {
		t.Fatalf("NewMessages: %v", err)
	}
	if got := messages.Text(validation.MsgFieldIsRequired, nil); got != "Dieses Feld ist erforderlich!" {
		t.Fatalf("expected german message, got %q", got)
	}
	if got := messages.Text(validation.MsgInvalidURL, nil); got != "Invalid URL!" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := messages.Text("unknownId", nil); got != "unknownId" {
		t.Fatalf("expected id for unknown message, got %q", got)
	}

	if err := messages.SetLocale("en"); err != nil {
		t.Fatalf("SetLocale: %v", err)
	}
	if got := messages.Text(validation.MsgNumberTooSmall, map[string]any{"Min": "5"}); got != "The number is too small! Minimum: 5" {
		t.Fatalf("unexpected template rendering %q", got)
	}
	if got := messages.Text(validation.MsgSelectMinItems, map[string]any{"Min": 1, "Count": 1}); got != "Select minimum 1 item!" {
		t.Fatalf("unexpected plural rendering %q", got)
	}
	if err := messages.SetLocale("not a locale!"); err == nil {
		t.Fatalf("expected invalid locale error")
	}
}

func TestRegistryUsesLocalisedMessages(t *testing.T) {
	messages, err := validation.NewMessages("de", "testdata/active.de.toml")
	if err != nil {
		t.Fatalf("NewMessages: %v", err)
	}
	v := newValidator(t, validation.Options{}, validation.WithRegistry(validation.NewRegistry(messages)))
	field := &schema.Field{FieldID: "f", Validator: schema.Validators("required")}
	errs, err := v.Validate(testsupport.Context(), field, "", nil, true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(errs) != 1 || errs[0] != "Dieses Feld ist erforderlich!" {
		t.Fatalf("expected localised message, got %v", errs)
	}

	field = &schema.Field{FieldID: "site", Validator: schema.Validators("url")}
	errs, err = v.Validate(testsupport.Context(), field, "not a url", nil, true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(errs) != 1 || errs[0] != "Invalid URL!" {
		t.Fatalf("expected english message for untranslated id, got %v", errs)
	}
}
