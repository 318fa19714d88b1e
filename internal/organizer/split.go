package organizer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type SplitResult struct {
	OutputFolder string            `json:"output_folder"`
	PageCount    int               `json:"page_count"`
	Files        []models.PageFile `json:"files"`
}

// PageFileName returns the file name Split uses for the page at 0-based index.
func PageFileName(index int) string {
	return fmt.Sprintf("page_%d.pdf", index+1)
}

// Split writes every page of source to its own single-page document
// page_<n>.pdf (1-indexed) inside outputFolder, creating the folder if needed.
// On failure the result lists the page files written so far.
func (o *Organizer) Split(ctx context.Context, source, outputFolder string) (*SplitResult, error) {
	const op = "split"

	result := &SplitResult{OutputFolder: outputFolder}
	err := guard(op, source, func() error {
		return o.split(ctx, op, source, outputFolder, result)
	})
	if err != nil {
		o.log.Error("%v (%d page files written)", err, len(result.Files))
		return result, err
	}

	o.log.Info("split %s into %d pages in %s", source, result.PageCount, outputFolder)
	return result, nil
}

func (o *Organizer) split(ctx context.Context, op, source, outputFolder string, result *SplitResult) error {
	if err := o.fs.MkdirAll(outputFolder, 0755); err != nil {
		return newError(op, KindWrite, outputFolder, err)
	}

	f, pdfCtx, err := o.readSource(op, source)
	if err != nil {
		return err
	}
	defer f.Close()

	result.PageCount = pdfCtx.PageCount

	for i := 0; i < pdfCtx.PageCount; i++ {
		if err := checkContext(ctx, op, source); err != nil {
			return err
		}

		page, err := api.ExtractPage(pdfCtx, i+1)
		if err != nil {
			return newError(op, KindSourceRead, source, fmt.Errorf("page %d: %w", i, err))
		}

		dest := filepath.Join(outputFolder, PageFileName(i))
		if _, err := o.writeFile(dest, func(w io.Writer) error {
			_, err := io.Copy(w, page)
			return err
		}); err != nil {
			return newError(op, KindWrite, dest, err)
		}

		result.Files = append(result.Files, models.PageFile{PageIndex: i, Path: dest})
	}

	return nil
}
