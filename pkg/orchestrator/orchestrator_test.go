package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formengine/internal/testsupport"
	"github.com/goliatone/go-formengine/pkg/fieldtree"
	"github.com/goliatone/go-formengine/pkg/lookup"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

var formPath = filepath.Join("testdata", "form.yaml")

func validModel() map[string]any {
	return map[string]any{
		"profile": map[string]any{"name": "Ada", "email": "ada@example.com", "status": "locked"},
	}
}

func rowLabels(rep report.Report) map[string]string {
	out := map[string]string{}
	for _, row := range rep.Rows {
		out[row.Label] = row.Value
	}
	return out
}

func TestGenerateFromPath(t *testing.T) {
	orch := orchestrator.New(
		orchestrator.WithLookupService(lookup.NewFileService(filepath.Join("testdata", "lookups.yaml"))),
		orchestrator.WithFieldIDPrefix("f-"),
	)

	rep, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath, Model: validModel()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Title != "form" || rep.IDPrefix != "f-" {
		t.Fatalf("unexpected report header %q %q", rep.Title, rep.IDPrefix)
	}
	if !rep.Valid() || len(rep.Results) != 3 || len(rep.Issues) != 0 {
		t.Fatalf("expected a valid report, got %+v", rep)
	}
	labels := rowLabels(rep)
	if labels["Status"] != "Locked" {
		t.Fatalf("expected lookup values in summary, got %v", labels)
	}
	if _, ok := labels["Greeting for Ada"]; !ok {
		t.Fatalf("expected templated label in summary, got %v", labels)
	}
}

func TestGenerateReportsInvalidFields(t *testing.T) {
	model := map[string]any{"profile": map[string]any{"email": "nope"}}

	rep, err := orchestrator.New().Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath, Model: model, Title: "Signup"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := map[string]validation.Status{}
	for _, result := range rep.Results {
		got[result.ID] = result.Status
	}
	want := map[string]validation.Status{
		"name":   {"This field is required!"},
		"email":  {"Invalid e-mail address!"},
		"status": {"This field is required!"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
	if rep.Title != "Signup" || rep.Invalid() != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestGeneratePreloadedSchemaAndNilModel(t *testing.T) {
	s := &schema.Schema{Fields: testsupport.ProfileFields()}
	s.Fields = append(s.Fields, &schema.Field{FieldID: "terms", Model: "terms", Validator: schema.Validators("required")})

	rep, err := orchestrator.New().Generate(testsupport.Context(), orchestrator.Request{Schema: s})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Title != "" {
		t.Fatalf("expected empty title, got %q", rep.Title)
	}
	if len(rep.Issues) != 1 || !strings.Contains(rep.Issues[0].Message, "duplicate fieldId") {
		t.Fatalf("expected duplicate id issue, got %+v", rep.Issues)
	}
	if rep.Invalid() == 0 {
		t.Fatalf("expected an empty model to fail required fields")
	}
}

func TestGenerateAppliesTransformers(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformerFromFile(filepath.Join("testdata", "preset.yaml"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	called := 0
	var seen *schema.Field
	orch := orchestrator.New(
		orchestrator.WithSchemaTransformer(preset),
		orchestrator.WithSchemaTransformer(nil),
		orchestrator.WithSchemaTransformer(orchestrator.TransformerFunc(func(_ context.Context, s *schema.Schema) error {
			called++
			seen = fieldtree.FindByID(s.Fields, "email")
			return nil
		})),
	)

	model := validModel()
	delete(model["profile"].(map[string]any), "email")
	rep, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath, Model: model})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if called != 1 || seen == nil {
		t.Fatalf("expected the second transformer to see the patched schema")
	}
	if seen.Label != "E-mail" || seen.Attrs["placeholder"] != "you@example.com" {
		t.Fatalf("preset not applied: %+v", seen)
	}
	if rep.Results[1].Label != "E-mail" || rep.Results[1].Status.Valid() {
		t.Fatalf("expected patched email to be required, got %+v", rep.Results[1])
	}
}

func TestGenerateTransformerError(t *testing.T) {
	boom := errors.New("boom")
	orch := orchestrator.New(orchestrator.WithSchemaTransformer(orchestrator.TransformerFunc(func(context.Context, *schema.Schema) error {
		return boom
	})))
	_, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transformer error, got %v", err)
	}
}

func TestGenerateRunsFiller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	orch := orchestrator.New(
		orchestrator.WithLogger(zap.New(core)),
		orchestrator.WithLookupService(lookup.NewFileService(filepath.Join("testdata", "lookups.yaml"))),
		orchestrator.WithFormOptions(validation.Options{}),
		orchestrator.WithFiller(func(ctx context.Context, v *validation.Validator, fields []*schema.Field, model map[string]any) (int, error) {
			name := fieldtree.FindByID(fields, "name").Clone()
			name.Model = fieldtree.ModelPath(fields, "name")
			if _, err := v.UpdateModelValue(ctx, name, model, "Grace", nil); err != nil {
				return 0, err
			}
			return 1, nil
		}),
	)

	model := validModel()
	model["profile"].(map[string]any)["name"] = ""
	rep, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath, Model: model})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !rep.Valid() {
		t.Fatalf("expected filled model to pass, got %+v", rep.Results)
	}
	if got := model["profile"].(map[string]any)["name"]; got != "Grace" {
		t.Fatalf("expected filler to write the model, got %#v", got)
	}
	entries := logs.FilterMessage("model filled").All()
	if len(entries) != 1 || entries[0].ContextMap()["changed"] != int64(1) {
		t.Fatalf("expected one fill log entry, got %+v", entries)
	}

	failing := orchestrator.New(orchestrator.WithFiller(func(context.Context, *validation.Validator, []*schema.Field, map[string]any) (int, error) {
		return 0, errors.New("aborted")
	}))
	if _, err := failing.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: formPath}); err == nil || !strings.Contains(err.Error(), "fill model") {
		t.Fatalf("expected fill error, got %v", err)
	}
}

func TestGenerateLintOnlyAndUndecodable(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	undecodable := filepath.Join(dir, "undecodable.yaml")
	if err := os.WriteFile(broken, []byte("fields:\n  - fieldId: a\n    validator: [nope]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(undecodable, []byte("fields:\n  - fieldId: a\n    label: [x]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	orch := orchestrator.New()
	rep, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: broken, LintOnly: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rep.Results) != 0 || len(rep.Issues) != 1 || rep.Issues[0].Path != "fields[0].validator" {
		t.Fatalf("unexpected lint report %+v", rep)
	}

	rep, err = orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: undecodable})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Valid() || len(rep.Results) != 0 || rep.Issues[0].Path != "fields[0].label" {
		t.Fatalf("expected decode issue only, got %+v", rep)
	}
}

func TestGenerateErrors(t *testing.T) {
	orch := orchestrator.New()
	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected missing schema error")
	}
	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{SchemaPath: filepath.Join("testdata", "missing.yaml")}); err == nil {
		t.Fatalf("expected read error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Generate(ctx, orchestrator.Request{SchemaPath: formPath}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestPresetTransformer(t *testing.T) {
	files := fstest.MapFS{
		"preset.toml": &fstest.MapFile{Data: []byte("[fields.city]\nlabel = \"Town\"\nrequired = true\n")},
		"empty.json":  &fstest.MapFile{Data: []byte("  ")},
		"ghost.json":  &fstest.MapFile{Data: []byte(`{"fields": {"ghost": {"label": "x"}}}`)},
		"bad.json":    &fstest.MapFile{Data: []byte(`{"fields": {"city": {"label": 3}}}`)},
	}

	preset, err := orchestrator.NewPresetTransformerFromFS(files, "preset.toml")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	s := &schema.Schema{Fields: testsupport.ProfileFields()}
	if err := preset.Transform(testsupport.Context(), s); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	city := fieldtree.FindByID(s.Fields, "city")
	if city.Label != "Town" || !city.Flags(nil, nil).Required {
		t.Fatalf("preset not applied: %+v", city)
	}

	if _, err := orchestrator.NewPresetTransformerFromFS(files, "empty.json"); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := orchestrator.NewPresetTransformerFromFS(nil, "preset.toml"); err == nil {
		t.Fatalf("expected nil filesystem error")
	}
	if _, err := orchestrator.NewPresetTransformerFromFS(files, " "); err == nil {
		t.Fatalf("expected missing path error")
	}
	for _, name := range []string{"ghost.json", "bad.json"} {
		preset, err := orchestrator.NewPresetTransformerFromFS(files, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := preset.Transform(testsupport.Context(), &schema.Schema{Fields: testsupport.ProfileFields()}); err == nil {
			t.Fatalf("%s: expected transform error", name)
		}
	}
	if err := preset.Transform(testsupport.Context(), nil); err == nil {
		t.Fatalf("expected nil schema error")
	}
}
