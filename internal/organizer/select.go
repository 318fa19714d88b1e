package organizer

import (
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Epistemic-Technology/pdf-organizer/internal/pages"
)

type SelectResult struct {
	Destination string `json:"destination"`
	SourcePages int    `json:"source_pages"`
	PageCount   int    `json:"page_count"`
	Selected    []int  `json:"selected"`
	Skipped     []int  `json:"skipped,omitempty"`
}

// SelectPages writes a new document made of the pages of source at the
// given 0-based indices, in the given order. Repeated indices repeat the
// page; omitted indices delete it. Out-of-range indices are skipped with a
// warning and reported in Skipped; they never fail the call. When no index
// is in range the destination is written as a document without pages.
func (o *Organizer) SelectPages(ctx context.Context, source, destination string, indices []int) (*SelectResult, error) {
	const op = "select"

	result := &SelectResult{Destination: destination}
	err := guard(op, source, func() error {
		return o.selectPages(ctx, op, source, destination, indices, result)
	})
	if err != nil {
		o.log.Error("%v", err)
		return result, err
	}

	o.log.Info("wrote %d of %d pages from %s to %s", result.PageCount, result.SourcePages, source, destination)
	return result, nil
}

func (o *Organizer) selectPages(ctx context.Context, op, source, destination string, indices []int, result *SelectResult) error {
	f, pdfCtx, err := o.readSource(op, source)
	if err != nil {
		return err
	}
	defer f.Close()

	total := pdfCtx.PageCount
	result.SourcePages = total

	valid, skipped := pages.Partition(indices, total)
	for _, index := range skipped {
		o.log.Warn("page %d skipped: outside [0, %d) of %s", index, total, source)
	}
	result.Selected = valid
	result.Skipped = skipped

	if err := checkContext(ctx, op, destination); err != nil {
		return err
	}

	_, err = o.writeFile(destination, func(w io.Writer) error {
		if len(valid) == 0 {
			return o.writeEmpty(w)
		}
		return api.Collect(f, w, pages.Selection(valid), o.configuration())
	})
	if err != nil {
		return newError(op, KindWrite, destination, err)
	}

	result.PageCount = len(valid)
	return nil
}

// writeEmpty serializes a document with an empty page tree.
func (o *Organizer) writeEmpty(w io.Writer) error {
	pdfCtx, err := pdfcpu.CreateContextWithXRefTable(o.configuration(), types.PaperSize["A4"])
	if err != nil {
		return err
	}
	return api.WriteContext(pdfCtx, w)
}
