package expr

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/visibility"
)

func TestRuleEval(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"enabled":      true,
		"flag":         "true",
		"off":          false,
		"role":         "admin",
		"count":        3,
		"ratio":        "2.5",
		"cta.headline": "Hello",
		"cta":          map[string]any{"body": "Hi"},
		"contacts": []any{
			map[string]any{"email": "a@example.com", "primary": true},
		},
		"profile": map[string]any{"label": "$self", "address": map[string]any{"city": "Berlin"}},
	}
	ctx := visibility.Context{Values: values, Extras: map[string]any{"role": "editor"}}

	cases := []struct {
		name string
		self string
		rule string
		want bool
	}{
		{name: "blank", rule: "  ", want: true},
		{name: "truthy", rule: "enabled", want: true},
		{name: "truthy missing", rule: "missing", want: false},
		{name: "not", rule: "!off", want: true},
		{name: "double not", rule: "!!enabled", want: true},
		{name: "bool literal", rule: "enabled == true", want: true},
		{name: "bool from string", rule: "flag == true", want: true},
		{name: "string literal", rule: `role == "admin"`, want: true},
		{name: "single quoted", rule: `role != 'user name'`, want: true},
		{name: "bare word", rule: "role == admin", want: true},
		{name: "escaped quote", rule: `role != "ad\"min"`, want: true},
		{name: "number", rule: "count == 3", want: true},
		{name: "number from string", rule: "ratio >= 2.5", want: true},
		{name: "ordering", rule: "count > 2 && count < 4 && count <= 3", want: true},
		{name: "non numeric ordering", rule: "role > 1", want: false},
		{name: "non numeric inequality", rule: "role != 1", want: true},
		{name: "null missing", rule: "missing == null", want: true},
		{name: "null present", rule: "off != nil", want: true},
		{name: "flattened key", rule: `cta.headline != ""`, want: true},
		{name: "nested path", rule: `cta.body == "Hi"`, want: true},
		{name: "bracket path", rule: `contacts[0].email == "a@example.com"`, want: true},
		{name: "extras", rule: `extras.role == "editor"`, want: true},
		{name: "extras case", rule: `EXTRAS.role == "editor"`, want: true},
		{name: "and short circuit", rule: `off && role == "admin"`, want: false},
		{name: "or", rule: `off || role == "admin"`, want: true},
		{name: "precedence", rule: `enabled || off && missing`, want: true},
		{name: "grouping", rule: `(enabled || off) && missing`, want: false},
		{name: "self", self: "contacts[0].primary", rule: "$self", want: true},
		{name: "self sub path", self: "profile.address", rule: `$self.city == "Berlin"`, want: true},
		{name: "self without field", rule: "$self", want: false},
		{name: "self inside literal", self: "profile.address", rule: `profile.label == "$self"`, want: true},
		{name: "self prefixed word", rule: "$selfish == null", want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := Compile(tc.rule)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tc.rule, err)
			}
			got, err := rule.Eval(tc.self, ctx)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.rule, err)
			}
			if got != tc.want {
				t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{
		"role = 1",
		"a & b",
		"a | b",
		`role == "open`,
		"(enabled",
		"enabled)",
		"role ==",
		"count < 'x'",
		"count >= true",
		"&& enabled",
		"!",
		"== 1",
	} {
		if _, err := Compile(rule); err == nil {
			t.Fatalf("expected compile error for %q", rule)
		}
	}
}

func TestCompiledRuleIsReusable(t *testing.T) {
	t.Parallel()

	rule := MustCompile(`status == "locked"`)
	if rule.String() != `status == "locked"` {
		t.Fatalf("unexpected source %q", rule.String())
	}
	for status, want := range map[string]bool{"locked": true, "active": false} {
		got, err := rule.Eval("", visibility.Context{Values: map[string]any{"status": status}})
		if err != nil || got != want {
			t.Fatalf("status %s: got %v, %v", status, got, err)
		}
	}

	var compiler visibility.Compiler = New()
	compiled, err := compiler.Compile("$self")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := compiled.Eval("terms", visibility.Context{Values: map[string]any{"terms": true}})
	if err != nil || !got {
		t.Fatalf("expected compiled $self rule to read the field, got %v %v", got, err)
	}
	if _, err := compiler.Compile("a = b"); err == nil {
		t.Fatalf("expected compiler to report syntax errors")
	}

	var empty *Rule
	if ok, err := empty.Eval("", visibility.Context{}); err != nil || !ok {
		t.Fatalf("expected nil rule to pass")
	}
}
