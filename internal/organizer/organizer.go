// Package organizer implements page-level operations on PDF documents:
// merging, splitting into single pages, selecting (reordering or deleting)
// pages, and extracting embedded images.
//
// Every operation reads its sources, builds its output through pdfcpu and
// writes the result through an afero.Fs. Destination files are staged next
// to their final path and renamed into place once complete, so a failed
// operation never leaves a truncated destination behind. Files finished
// before a failure (earlier pages of a split, earlier images of an
// extraction) are kept and reported in the operation result.
package organizer

import (
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
)

const pdfMIME = "application/pdf"

type Organizer struct {
	fs   afero.Fs
	log  logger.Logger
	conf *model.Configuration
}

type Option func(*Organizer)

// WithConfiguration sets the pdfcpu configuration used as a template for every operation.
func WithConfiguration(conf *model.Configuration) Option {
	return func(o *Organizer) {
		o.conf = conf
	}
}

// New creates an Organizer. A nil fs means the OS filesystem and a nil
// logger discards status messages.
func New(fs afero.Fs, log logger.Logger, opts ...Option) *Organizer {
	o := &Organizer{fs: fs, log: log}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.log == nil {
		o.log = logger.NewNoOpLogger()
	}
	if o.conf == nil {
		o.conf = model.NewDefaultConfiguration()
	}
	return o
}

// configuration returns a fresh copy of the template; pdfcpu records the
// running command in the configuration it is handed.
func (o *Organizer) configuration() *model.Configuration {
	conf := *o.conf
	return &conf
}

// openSource opens path and checks that its content is a PDF. The returned
// file is positioned at offset 0.
func (o *Organizer) openSource(op, path string) (afero.File, error) {
	f, err := o.fs.Open(path)
	if err != nil {
		return nil, newError(op, KindSourceRead, path, err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, newError(op, KindSourceRead, path, fmt.Errorf("failed to detect content type: %w", err))
	}
	if !mtype.Is(pdfMIME) {
		f.Close()
		return nil, newError(op, KindSourceRead, path, fmt.Errorf("%w (detected %s)", ErrNotPDF, mtype.String()))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, newError(op, KindSourceRead, path, err)
	}
	return f, nil
}

// readSource opens, sniffs and parses path. The caller owns the returned file.
func (o *Organizer) readSource(op, path string) (afero.File, *model.Context, error) {
	f, err := o.openSource(op, path)
	if err != nil {
		return nil, nil, err
	}

	pdfCtx, err := api.ReadValidateAndOptimize(f, o.configuration())
	if err != nil {
		f.Close()
		return nil, nil, newError(op, KindSourceRead, path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, newError(op, KindSourceRead, path, err)
	}
	return f, pdfCtx, nil
}

func checkContext(ctx context.Context, op, path string) error {
	if err := ctx.Err(); err != nil {
		return newError(op, KindCanceled, path, err)
	}
	return nil
}

// PageCount returns the number of pages in source.
func (o *Organizer) PageCount(ctx context.Context, source string) (int, error) {
	const op = "page-count"

	var count int
	err := guard(op, source, func() error {
		if err := checkContext(ctx, op, source); err != nil {
			return err
		}
		f, err := o.openSource(op, source)
		if err != nil {
			return err
		}
		defer f.Close()

		count, err = api.PageCount(f, o.configuration())
		if err != nil {
			return newError(op, KindSourceRead, source, err)
		}
		return nil
	})
	if err != nil {
		o.log.Error("%v", err)
		return 0, err
	}

	o.log.Debug("%s has %d pages", source, count)
	return count, nil
}
