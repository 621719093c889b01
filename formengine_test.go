package formengine

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formengine/internal/testsupport"
	"github.com/goliatone/go-formengine/pkg/report"
	"github.com/goliatone/go-formengine/pkg/schema"
)

const signupSchema = `
fields:
  - fieldId: name
    model: name
    label: "Name ({{ plan || free }})"
    type: vTextbox
    validator: [required]
  - fieldId: age
    model: age
    label: Age
    type: vTextbox
    validator: [integer]
`

func writeSchema(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func TestCheckAndWriteReport(t *testing.T) {
	path := writeSchema(t, signupSchema)

	rep, err := Check(testsupport.Context(), path, map[string]any{"age": 4.5})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if rep.Valid() || rep.Invalid() != 2 {
		t.Fatalf("expected two invalid fields, got %+v", rep.Results)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, report.FormatText, rep); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"signup\n", "FAIL Name (free) [name]", "The value is not an integer", "2 of 2 fields invalid"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestCheckSchemaAndLint(t *testing.T) {
	s := &schema.Schema{Fields: testsupport.ProfileFields()}
	rep, err := CheckSchema(testsupport.Context(), s, testsupport.ProfileModel())
	if err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
	if rep.Invalid() != 1 {
		t.Fatalf("expected the missing city to fail, got %+v", rep.Results)
	}

	path := writeSchema(t, "fields:\n  - fieldId: a\n  - fieldId: a\n")
	rep, err = Lint(testsupport.Context(), path)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(rep.Issues) != 1 || rep.Issues[0].Path != "fields[1]" {
		t.Fatalf("expected duplicate id issue, got %+v", rep.Issues)
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"text.tpl", "html.tpl"} {
		data, err := fs.ReadFile(EmbeddedTemplates(), name)
		if err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
		if !strings.Contains(string(data), "verdict") {
			t.Fatalf("expected %s to render the verdict", name)
		}
	}
	if NewOrchestrator() == nil {
		t.Fatalf("expected orchestrator")
	}
}
