// Package sources turns source locators (local paths, URLs and Zotero
// attachment keys) into local PDF files the organizer can read.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/config"
	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

const zoteroPrefix = "zotero:"

var (
	ErrNoSource            = errors.New("no path, URL or Zotero ID provided")
	ErrZoteroNotConfigured = errors.New("Zotero is not configured (set ZOTERO_API_KEY and ZOTERO_LIBRARY_ID)")
	ErrNotPDF              = errors.New("fetched content is not a PDF document")
)

// ZoteroFiles downloads attachment files from a Zotero library.
type ZoteroFiles interface {
	File(ctx context.Context, key string) ([]byte, error)
}

// Staged is a source available on the local filesystem.
type Staged struct {
	Path   string
	Origin string // the path, URL or zotero:<key> it was resolved from
	Size   int64  // bytes fetched; 0 for local paths

	fs        afero.Fs
	temporary bool
}

// Cleanup removes the staged copy of a remote source. Local paths are left alone.
func (s *Staged) Cleanup() error {
	if s == nil || !s.temporary {
		return nil
	}
	if err := s.fs.Remove(s.Path); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
		return fmt.Errorf("failed to remove staged source %s: %w", s.Path, err)
	}
	return nil
}

// Batch is the result of resolving several sources at once.
type Batch []*Staged

func (b Batch) Paths() []string {
	paths := make([]string, len(b))
	for i, s := range b {
		paths[i] = s.Path
	}
	return paths
}

func (b Batch) Cleanup() error {
	var errs []error
	for _, s := range b {
		if err := s.Cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Resolver struct {
	fs         afero.Fs
	log        logger.Logger
	client     *http.Client
	zotero     ZoteroFiles
	limiter    *Limiter
	stagingDir string
}

type Option func(*Resolver)

func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

func WithZotero(files ZoteroFiles) Option {
	return func(r *Resolver) {
		r.zotero = files
	}
}

func WithLimiter(l *Limiter) Option {
	return func(r *Resolver) {
		r.limiter = l
	}
}

func WithStagingDir(dir string) Option {
	return func(r *Resolver) {
		r.stagingDir = dir
	}
}

func NewResolver(fs afero.Fs, log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{fs: fs, log: log}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.log == nil {
		r.log = logger.NewNoOpLogger()
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.limiter == nil {
		r.limiter = NewLimiter(LimiterConfig{})
	}
	if r.stagingDir == "" {
		r.stagingDir = afero.GetTempDir(r.fs, "pdf-organizer")
	}
	return r
}

// NewResolverFromConfig wires the fetch, staging and Zotero settings of conf.
// Zotero sources are rejected unless both the API key and library ID are set.
func NewResolverFromConfig(conf *config.Config, fs afero.Fs, log logger.Logger) *Resolver {
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: conf.Fetch.Timeout}),
		WithLimiter(NewLimiter(LimiterConfig{
			RequestsPerSecond: conf.Fetch.RequestsPerSecond,
			Burst:             conf.Fetch.Burst,
			MaxRetries:        conf.Fetch.MaxRetries,
		})),
		WithStagingDir(conf.StagingDir()),
	}
	if conf.Zotero.APIKey != "" && conf.Zotero.LibraryID != "" {
		client := zotero.NewClient(conf.Zotero.LibraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(conf.Zotero.APIKey))
		opts = append(opts, WithZotero(client))
	}
	return NewResolver(fs, log, opts...)
}

// ParseSource interprets a command line argument: "zotero:<key>" is a Zotero
// attachment, http:// and https:// are URLs, anything else is a local path.
func ParseSource(arg string) models.SourceInfo {
	switch {
	case strings.HasPrefix(arg, zoteroPrefix):
		return models.SourceInfo{ZoteroID: strings.TrimPrefix(arg, zoteroPrefix)}
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return models.SourceInfo{URL: arg}
	default:
		return models.SourceInfo{Path: arg}
	}
}

// Resolve makes info available as a local file. Remote sources are
// downloaded into the staging directory and must be PDFs; the caller
// removes them with Cleanup.
func (r *Resolver) Resolve(ctx context.Context, info models.SourceInfo) (*Staged, error) {
	switch {
	case info.Path != "":
		return &Staged{Path: info.Path, Origin: info.Path, fs: r.fs}, nil
	case info.URL != "":
		data, err := Do(ctx, r.limiter, r.log, func(ctx context.Context) ([]byte, error) {
			return r.getURL(ctx, info.URL)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", info.URL, err)
		}
		return r.stage(info.URL, data)
	case info.ZoteroID != "":
		if r.zotero == nil {
			return nil, ErrZoteroNotConfigured
		}
		data, err := Do(ctx, r.limiter, r.log, func(ctx context.Context) ([]byte, error) {
			return r.zotero.File(ctx, info.ZoteroID)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch Zotero item %s: %w", info.ZoteroID, err)
		}
		return r.stage(zoteroPrefix+info.ZoteroID, data)
	default:
		return nil, ErrNoSource
	}
}

// ResolveAll resolves infos in order. If any source fails, the sources
// already staged are cleaned up.
func (r *Resolver) ResolveAll(ctx context.Context, infos []models.SourceInfo) (Batch, error) {
	batch := make(Batch, 0, len(infos))
	for _, info := range infos {
		staged, err := r.Resolve(ctx, info)
		if err != nil {
			if cleanupErr := batch.Cleanup(); cleanupErr != nil {
				r.log.Warn("%v", cleanupErr)
			}
			return nil, err
		}
		batch = append(batch, staged)
	}
	return batch, nil
}

func (r *Resolver) getURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (r *Resolver) stage(origin string, data []byte) (*Staged, error) {
	if mtype := mimetype.Detect(data); !mtype.Is("application/pdf") {
		return nil, fmt.Errorf("%s: %w (detected %s)", origin, ErrNotPDF, mtype.String())
	}

	if err := r.fs.MkdirAll(r.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	f, err := afero.TempFile(r.fs, r.stagingDir, "source-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		r.fs.Remove(path)
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		r.fs.Remove(path)
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}

	r.log.Debug("staged %s (%s) at %s", origin, humanize.Bytes(uint64(len(data))), filepath.Base(path))
	return &Staged{Path: path, Origin: origin, Size: int64(len(data)), fs: r.fs, temporary: true}, nil
}
