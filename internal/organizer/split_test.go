package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/pdftest"
)

func TestSplit(t *testing.T) {
	// Run against the real filesystem to cover recursive folder creation on disk
	fs := afero.NewOsFs()
	o := New(fs, logger.NewNoOpLogger())
	dir := t.TempDir()

	source := filepath.Join(dir, "A.pdf")
	writePDF(t, fs, source, pdftest.Pages(3))
	outputFolder := filepath.Join(dir, "nested", "folder")

	result, err := o.Split(context.Background(), source, outputFolder)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if result.PageCount != 3 {
		t.Errorf("Expected 3 pages, got %d", result.PageCount)
	}
	if len(result.Files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(result.Files))
	}

	for i, file := range result.Files {
		wantPath := filepath.Join(outputFolder, fmt.Sprintf("page_%d.pdf", i+1))
		if file.Path != wantPath || file.PageIndex != i {
			t.Errorf("File %d = %+v, want page %d at %s", i, file, i, wantPath)
		}

		got := readWidths(t, fs, file.Path)
		if !reflect.DeepEqual(got, []int{pdftest.WidthOf(i)}) {
			t.Errorf("%s widths = %v, want [%d]", filepath.Base(file.Path), got, pdftest.WidthOf(i))
		}
	}

	entries, err := afero.ReadDir(fs, outputFolder)
	if err != nil {
		t.Fatalf("Failed to list output folder: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected exactly 3 entries in output folder, got %d", len(entries))
	}
}

func TestSplit_ExistingFolder(t *testing.T) {
	o, fs := newTestOrganizer(t)
	writePDF(t, fs, "/docs/A.pdf", pdftest.Pages(1))
	if err := fs.MkdirAll("/split", 0755); err != nil {
		t.Fatal(err)
	}

	result, err := o.Split(context.Background(), "/docs/A.pdf", "/split")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != filepath.Join("/split", "page_1.pdf") {
		t.Errorf("Unexpected files: %+v", result.Files)
	}
}

func TestSplit_MissingSourceCreatesFolder(t *testing.T) {
	o, fs := newTestOrganizer(t)

	result, err := o.Split(context.Background(), "/docs/missing.pdf", "/split")
	if KindOf(err) != KindSourceRead {
		t.Fatalf("Expected kind %s, got %v", KindSourceRead, err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Expected no files, got %d", len(result.Files))
	}
	if exists, _ := afero.DirExists(fs, "/split"); !exists {
		t.Error("Output folder should be created before the source is read")
	}
}

func TestSplit_UnwritableFolder(t *testing.T) {
	base := afero.NewMemMapFs()
	writePDF(t, base, "/docs/A.pdf", pdftest.Pages(2))
	o := New(afero.NewReadOnlyFs(base), logger.NewNoOpLogger())

	_, err := o.Split(context.Background(), "/docs/A.pdf", "/split")
	if KindOf(err) != KindWrite {
		t.Fatalf("Expected kind %s, got %v", KindWrite, err)
	}
}
