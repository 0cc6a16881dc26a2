package render

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/jobfit/internal/model"
)

func TestText_Analysis(t *testing.T) {
	v := model.View{
		State:       model.ViewAnalysis,
		JobID:       "Senior Go Developer @ Initech",
		CompanyName: "Initech",
		Content:     "## Fit\n- strong Go background",
	}
	out := Text(v, 80)
	for _, want := range []string{"Job Analysis", "Senior Go Developer @ Initech", "Initech", "## Fit", "- strong Go background"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestText_ErrorHidesContent(t *testing.T) {
	v := model.View{
		State:   model.ViewCoverLetter,
		Content: "stale letter",
		Err:     model.RateLimitError(errors.New("HTTP 429")),
	}
	out := Text(v, 80)
	if !strings.Contains(out, "Rate Limit Exceeded") {
		t.Errorf("output missing rate limit message:\n%s", out)
	}
	if strings.Contains(out, "stale letter") {
		t.Error("error presentation must not show content")
	}
}

func TestText_InstructionsShowsQuery(t *testing.T) {
	out := Text(model.View{State: model.ViewInstructions, SearchQuery: "golang remote"}, 80)
	if !strings.Contains(out, "golang remote") {
		t.Errorf("output missing search query:\n%s", out)
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("wordWrap = %q", got)
	}
	if wordWrap("   ", 10) != "" {
		t.Error("blank input should wrap to empty")
	}
}

func TestFileDownloader_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := NewFileDownloader(dir)

	path, err := d.Save("../../escape/Ada_Resume.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "Ada_Resume.pdf") {
		t.Errorf("path = %q, want inside output dir", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF" {
		t.Errorf("file content = %q, %v", got, err)
	}
}

func TestFileDownloader_RejectsEmptyName(t *testing.T) {
	if _, err := NewFileDownloader(t.TempDir()).Save("", []byte("x")); err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestLogRenderer(t *testing.T) {
	r := NewLogRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Start(model.ViewAnalysis, "op-1")
	r.Render(model.View{State: model.ViewAnalysis, JobID: "x @ y"})
	r.Render(model.View{State: model.ViewAnalysis, Err: errors.New("boom")})
	r.Stop("op-1")
}
