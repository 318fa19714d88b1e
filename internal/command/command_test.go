package command

import (
	"bytes"
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/pdftest"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

type testCLI struct {
	fs     afero.Fs
	out    *bytes.Buffer
	status *bytes.Buffer
	env    *Env
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	fs := afero.NewMemMapFs()
	out := &bytes.Buffer{}
	status := &bytes.Buffer{}
	log := logger.NewWriterLogger(status, logger.InfoLevel)

	for path, n := range map[string]int{"/docs/a.pdf": 3, "/docs/b.pdf": 2} {
		if err := afero.WriteFile(fs, path, pdftest.Build(pdftest.Pages(n)), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return &testCLI{
		fs:     fs,
		out:    out,
		status: status,
		env: &Env{
			Fs:        fs,
			Organizer: organizer.New(fs, log),
			Resolver:  sources.NewResolver(fs, log, sources.WithStagingDir("/staging")),
			Log:       log,
			Out:       out,
		},
	}
}

func (c *testCLI) run(args ...string) error {
	app := NewApp("pdf-organizer", "test", c.env)
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	return app.RunContext(context.Background(), append([]string{"pdf-organizer"}, args...))
}

func (c *testCLI) widths(t *testing.T, path string) []int {
	t.Helper()
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	widths, err := pdftest.PageWidths(data)
	if err != nil {
		t.Fatalf("Failed to read page dimensions of %s: %v", path, err)
	}
	return widths
}

func TestMergeCommand(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("merge", "-o", "/docs/out.pdf", "/docs/b.pdf", "/docs/a.pdf"); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	want := append(pdftest.Widths(0, 1), pdftest.Widths(0, 1, 2)...)
	if got := c.widths(t, "/docs/out.pdf"); !reflect.DeepEqual(got, want) {
		t.Errorf("Merged widths = %v, want %v", got, want)
	}
	if !strings.HasPrefix(c.out.String(), "/docs/out.pdf: 5 pages from 2 documents") {
		t.Errorf("Unexpected output: %q", c.out.String())
	}
	if !strings.Contains(c.status.String(), "[INFO] merged 2 documents (5 pages)") {
		t.Errorf("Unexpected status: %q", c.status.String())
	}
}

func TestMergeCommand_RequiresOutput(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("merge", "/docs/a.pdf"); err == nil {
		t.Fatal("Expected an error without -o")
	}
}

func TestSplitCommand(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("split", "-d", "/split", "/docs/a.pdf"); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(c.out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %q", c.out.String())
	}
	if !strings.HasPrefix(lines[2], "/split/page_3.pdf\t") {
		t.Errorf("Unexpected line: %q", lines[2])
	}
}

func TestSelectCommand(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("select", "-o", "/docs/out.pdf", "-p", "2,0,5", "/docs/a.pdf"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if got := c.widths(t, "/docs/out.pdf"); !reflect.DeepEqual(got, pdftest.Widths(2, 0)) {
		t.Errorf("Selected widths = %v, want %v", got, pdftest.Widths(2, 0))
	}
	if !strings.Contains(c.status.String(), "[WARN] page 5 skipped") {
		t.Errorf("Expected a skip warning, got %q", c.status.String())
	}
	if !strings.HasPrefix(c.out.String(), "/docs/out.pdf: 2 of 3 pages") {
		t.Errorf("Unexpected output: %q", c.out.String())
	}
}

func TestSelectCommand_InvalidPages(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("select", "-o", "/docs/out.pdf", "-p", "two", "/docs/a.pdf"); err == nil {
		t.Fatal("Expected an error for an invalid page list")
	}
	if exists, _ := afero.Exists(c.fs, "/docs/out.pdf"); exists {
		t.Error("Nothing should be written for an invalid page list")
	}
}

func TestExtractImagesCommand_NoImages(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("extract-images", "-d", "/images", "/docs/a.pdf"); err != nil {
		t.Fatalf("extract-images failed: %v", err)
	}
	if c.out.Len() != 0 {
		t.Errorf("Expected no output lines, got %q", c.out.String())
	}
	if !strings.Contains(c.status.String(), "[INFO] extracted 0 images") {
		t.Errorf("Unexpected status: %q", c.status.String())
	}
}

func TestPageCountCommand(t *testing.T) {
	c := newTestCLI(t)

	if err := c.run("page-count", "/docs/a.pdf", "/docs/b.pdf"); err != nil {
		t.Fatalf("page-count failed: %v", err)
	}
	if got := c.out.String(); got != "/docs/a.pdf\t3\n/docs/b.pdf\t2\n" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestPageCountCommand_MissingSource(t *testing.T) {
	c := newTestCLI(t)

	err := c.run("page-count", "/docs/missing.pdf")
	if organizer.KindOf(err) != organizer.KindSourceRead {
		t.Fatalf("Expected a source read error, got %v", err)
	}
	if !strings.Contains(c.status.String(), "[ERROR]") {
		t.Errorf("Expected an error status line, got %q", c.status.String())
	}
}
