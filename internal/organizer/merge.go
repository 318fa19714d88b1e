package organizer

import (
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/afero"
)

type MergeResult struct {
	Destination string `json:"destination"`
	SourceCount int    `json:"source_count"`
	PageCount   int    `json:"page_count"`
}

// Merge concatenates the pages of sources, in order, into destination.
// destination is created or overwritten; its directory must exist.
func (o *Organizer) Merge(ctx context.Context, sources []string, destination string) (*MergeResult, error) {
	const op = "merge"

	result := &MergeResult{Destination: destination}
	err := guard(op, destination, func() error {
		return o.merge(ctx, op, sources, destination, result)
	})
	if err != nil {
		o.log.Error("%v", err)
		return result, err
	}

	o.log.Info("merged %d documents (%d pages) into %s", result.SourceCount, result.PageCount, destination)
	return result, nil
}

func (o *Organizer) merge(ctx context.Context, op string, sources []string, destination string, result *MergeResult) error {
	if len(sources) == 0 {
		return newError(op, KindInvalidArgument, "", ErrNoSources)
	}

	var files []afero.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	readers := make([]io.ReadSeeker, 0, len(sources))
	for _, source := range sources {
		if err := checkContext(ctx, op, source); err != nil {
			return err
		}

		f, pdfCtx, err := o.readSource(op, source)
		if err != nil {
			return err
		}
		files = append(files, f)
		readers = append(readers, f)

		o.log.Debug("merge: %s contributes %d pages", source, pdfCtx.PageCount)
		result.PageCount += pdfCtx.PageCount
	}

	if err := checkContext(ctx, op, destination); err != nil {
		return err
	}

	_, err := o.writeFile(destination, func(w io.Writer) error {
		return api.MergeRaw(readers, w, false, o.configuration())
	})
	if err != nil {
		return newError(op, KindWrite, destination, err)
	}

	result.SourceCount = len(sources)
	return nil
}
