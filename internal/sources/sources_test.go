package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/pdftest"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

func fastLimiter() *Limiter {
	return NewLimiter(LimiterConfig{
		RequestsPerSecond: 1000,
		Burst:             10,
		MaxRetries:        3,
		BaseRetryDelay:    time.Millisecond,
		MaxRetryDelay:     5 * time.Millisecond,
	})
}

func newTestResolver(opts ...Option) (*Resolver, afero.Fs) {
	fs := afero.NewMemMapFs()
	opts = append([]Option{WithLimiter(fastLimiter()), WithStagingDir("/staging")}, opts...)
	return NewResolver(fs, logger.NewNoOpLogger(), opts...), fs
}

type fakeZotero struct {
	files map[string][]byte
	err   error
}

func (f *fakeZotero) File(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return data, nil
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		arg  string
		want models.SourceInfo
	}{
		{"docs/a.pdf", models.SourceInfo{Path: "docs/a.pdf"}},
		{"/abs/a.pdf", models.SourceInfo{Path: "/abs/a.pdf"}},
		{"https://example.com/a.pdf", models.SourceInfo{URL: "https://example.com/a.pdf"}},
		{"http://example.com/a.pdf", models.SourceInfo{URL: "http://example.com/a.pdf"}},
		{"zotero:ABCD1234", models.SourceInfo{ZoteroID: "ABCD1234"}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			if got := ParseSource(tt.arg); got != tt.want {
				t.Errorf("ParseSource(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestResolve_Path(t *testing.T) {
	r, _ := newTestResolver()

	staged, err := r.Resolve(context.Background(), models.SourceInfo{Path: "/docs/a.pdf"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if staged.Path != "/docs/a.pdf" {
		t.Errorf("Expected the path to be used as-is, got %s", staged.Path)
	}
	if err := staged.Cleanup(); err != nil {
		t.Errorf("Cleanup of a local path should be a no-op, got %v", err)
	}
}

func TestResolve_NoSource(t *testing.T) {
	r, _ := newTestResolver()

	_, err := r.Resolve(context.Background(), models.SourceInfo{})
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got %v", err)
	}
}

func TestResolve_URL(t *testing.T) {
	pdf := pdftest.Build(pdftest.Pages(2))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer server.Close()

	r, fs := newTestResolver()
	staged, err := r.Resolve(context.Background(), models.SourceInfo{URL: server.URL + "/paper.pdf"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	data, err := afero.ReadFile(fs, staged.Path)
	if err != nil {
		t.Fatalf("Staged file not readable: %v", err)
	}
	if !reflect.DeepEqual(data, pdf) {
		t.Error("Staged file does not match the served document")
	}
	if staged.Size != int64(len(pdf)) {
		t.Errorf("Expected size %d, got %d", len(pdf), staged.Size)
	}

	if err := staged.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if exists, _ := afero.Exists(fs, staged.Path); exists {
		t.Error("Staged file should be removed by Cleanup")
	}
}

func TestResolve_URLNotPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Login required</body></html>"))
	}))
	defer server.Close()

	r, fs := newTestResolver()
	_, err := r.Resolve(context.Background(), models.SourceInfo{URL: server.URL})
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("Expected ErrNotPDF, got %v", err)
	}

	entries, _ := afero.ReadDir(fs, "/staging")
	if len(entries) != 0 {
		t.Errorf("Nothing should be staged for rejected content, found %d files", len(entries))
	}
}

func TestResolve_URLRetriesThrottledRequests(t *testing.T) {
	pdf := pdftest.Build(pdftest.Pages(1))
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(pdf)
	}))
	defer server.Close()

	r, _ := newTestResolver()
	staged, err := r.Resolve(context.Background(), models.SourceInfo{URL: server.URL})
	if err != nil {
		t.Fatalf("Resolve failed after retries: %v", err)
	}
	defer staged.Cleanup()

	if calls.Load() != 3 {
		t.Errorf("Expected 3 requests, got %d", calls.Load())
	}
}

func TestResolve_URLNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		http.NotFound(w, req)
	}))
	defer server.Close()

	r, _ := newTestResolver()
	_, err := r.Resolve(context.Background(), models.SourceInfo{URL: server.URL})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected a 404 StatusError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single request, got %d", calls.Load())
	}
}

func TestResolve_Zotero(t *testing.T) {
	pdf := pdftest.Build(pdftest.Pages(3))
	r, fs := newTestResolver(WithZotero(&fakeZotero{files: map[string][]byte{"ITEM1": pdf}}))

	staged, err := r.Resolve(context.Background(), models.SourceInfo{ZoteroID: "ITEM1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	defer staged.Cleanup()

	if staged.Origin != "zotero:ITEM1" {
		t.Errorf("Unexpected origin %q", staged.Origin)
	}
	if exists, _ := afero.Exists(fs, staged.Path); !exists {
		t.Error("Zotero attachment should be staged")
	}
}

func TestResolve_ZoteroNotConfigured(t *testing.T) {
	r, _ := newTestResolver()

	_, err := r.Resolve(context.Background(), models.SourceInfo{ZoteroID: "ITEM1"})
	if !errors.Is(err, ErrZoteroNotConfigured) {
		t.Errorf("Expected ErrZoteroNotConfigured, got %v", err)
	}
}

func TestResolveAll_CleansUpOnFailure(t *testing.T) {
	pdf := pdftest.Build(pdftest.Pages(1))
	r, fs := newTestResolver(WithZotero(&fakeZotero{files: map[string][]byte{"OK": pdf}}))

	_, err := r.ResolveAll(context.Background(), []models.SourceInfo{
		{ZoteroID: "OK"},
		{Path: "/docs/local.pdf"},
		{ZoteroID: "MISSING"},
	})
	if err == nil {
		t.Fatal("Expected an error for the missing Zotero item")
	}

	entries, _ := afero.ReadDir(fs, "/staging")
	if len(entries) != 0 {
		t.Errorf("Staged files should be removed after a failed batch, found %d", len(entries))
	}
}

func TestResolveAll_Paths(t *testing.T) {
	r, _ := newTestResolver()

	batch, err := r.ResolveAll(context.Background(), []models.SourceInfo{{Path: "/a.pdf"}, {Path: "/b.pdf"}})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if got := batch.Paths(); !reflect.DeepEqual(got, []string{"/a.pdf", "/b.pdf"}) {
		t.Errorf("Paths = %v", got)
	}
	if err := batch.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
}
