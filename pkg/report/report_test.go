package report_test

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formengine/internal/testsupport"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/summary"
	"github.com/goliatone/go-formengine/pkg/validation"
)

func newEngine(t *testing.T, opts ...report.Option) *report.Engine {
	t.Helper()
	engine, err := report.NewEngine(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func profileReport(t *testing.T) report.Report {
	t.Helper()
	v, err := validation.New(validation.Options{})
	if err != nil {
		t.Fatalf("validation.New: %v", err)
	}
	t.Cleanup(v.Close)

	fields := testsupport.ProfileFields()
	model := testsupport.ProfileModel()
	model["profile"].(map[string]any)["name"] = "Ada & Sons"
	results, err := v.CheckFieldsValidation(testsupport.Context(), fields, model)
	if err != nil {
		t.Fatalf("CheckFieldsValidation: %v", err)
	}
	return report.Report{Title: "Profile", Results: results, Rows: summary.Rows(fields, model)}
}

func TestWriteTextGolden(t *testing.T) {
	engine := newEngine(t)
	rep := profileReport(t)

	var buf bytes.Buffer
	if err := engine.Write(&buf, report.FormatText, rep); err != nil {
		t.Fatalf("Write: %v", err)
	}

	golden := filepath.Join("testdata", "profile.golden")
	if testsupport.WriteMaybeGolden(t, golden, buf.Bytes()) {
		return
	}
	if want := testsupport.MustReadGoldenString(t, golden); buf.String() != want {
		t.Fatalf("text report mismatch\nwant: %q\n got: %q", want, buf.String())
	}
	if rep.Valid() || rep.Invalid() != 1 {
		t.Fatalf("expected one invalid result")
	}
}

func TestWriteHTML(t *testing.T) {
	engine := newEngine(t)
	rep := profileReport(t)
	rep.Title = "  Profile <check>  "
	rep.Issues = []validation.SchemaIssue{{Path: "fields[0]", Message: "duplicate fieldId"}}
	rep.IDPrefix = "chk-"

	var buf bytes.Buffer
	if err := engine.Write(&buf, report.FormatHTML, rep); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Profile &lt;check&gt;</title>",
		`<tr id="chk-city" class="invalid"><td>City</td>`,
		"<li>This field is required!</li>",
		"<code>fields[0]</code> duplicate fieldId",
		"<dt>Status</dt><dd>Active</dd>",
		"<dt>Name</dt><dd>Ada &amp; Sons</dd>",
		"1 of 3 fields invalid, 1 schema issues",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	if err := engine.Write(&buf, report.FormatJSON, profileReport(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var decoded struct {
		Title   string `json:"title"`
		Results []struct {
			ID     string `json:"id"`
			Status any    `json:"validationStatus"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Title != "Profile" || len(decoded.Results) != 3 {
		t.Fatalf("unexpected json report %+v", decoded)
	}
	if status, ok := decoded.Results[1].Status.([]any); !ok || len(status) != 1 {
		t.Fatalf("expected city errors, got %#v", decoded.Results[1].Status)
	}
}

func TestEngineOverridesAndStrings(t *testing.T) {
	files := fstest.MapFS{
		"text.tpl": &fstest.MapFile{Data: []byte("custom {{ verdict }}")},
	}
	engine := newEngine(t, report.WithFS(files), report.WithGlobalData(map[string]any{"app": "formcheck"}))

	var buf bytes.Buffer
	if err := engine.Write(&buf, report.FormatText, report.Report{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "custom all fields valid" {
		t.Fatalf("expected override template, got %q", buf.String())
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderString("{{ app }}: {{ name|trim }}", map[string]any{"name": "  Ada "}, w)
	})
	if result != "formcheck: Ada" || written != result {
		t.Fatalf("unexpected render %q / %q", result, written)
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout_report", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)) + "!", nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	out, err := engine.RenderString("{{ name|shout_report }}", map[string]any{"name": "ada"})
	if err != nil || out != "ADA!" {
		t.Fatalf("unexpected render %q %v", out, err)
	}
	if err := engine.RegisterFilter("shout_report", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]report.Format{"": report.FormatText, "HTML": report.FormatHTML, "json": report.FormatJSON} {
		got, err := report.ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := report.ParseFormat("pdf"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
