package organizer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type ExtractResult struct {
	OutputFolder string                  `json:"output_folder"`
	Images       []models.ExtractedImage `json:"images"`
}

// Count returns the number of images written.
func (r *ExtractResult) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Images)
}

// ImageFileName returns p<pageIndex>_<name>[.<fileType>].
func ImageFileName(pageIndex int, name, fileType string) string {
	if fileType == "" {
		return fmt.Sprintf("p%d_%s", pageIndex, name)
	}
	return fmt.Sprintf("p%d_%s.%s", pageIndex, name, fileType)
}

// ExtractImages writes every embedded image of source into outputFolder,
// creating the folder if needed. Pages are visited in ascending order and,
// within a page, images by object number. On failure the result still lists
// the images written before the failure.
func (o *Organizer) ExtractImages(ctx context.Context, source, outputFolder string) (*ExtractResult, error) {
	const op = "extract-images"

	result := &ExtractResult{OutputFolder: outputFolder}
	err := guard(op, source, func() error {
		return o.extractImages(ctx, op, source, outputFolder, result)
	})
	if err != nil {
		o.log.Error("%v (%d images written)", err, result.Count())
		return result, err
	}

	o.log.Info("extracted %d images from %s to %s", result.Count(), source, outputFolder)
	return result, nil
}

func (o *Organizer) extractImages(ctx context.Context, op, source, outputFolder string, result *ExtractResult) error {
	if err := o.fs.MkdirAll(outputFolder, 0755); err != nil {
		return newError(op, KindWrite, outputFolder, err)
	}

	f, err := o.openSource(op, source)
	if err != nil {
		return err
	}
	defer f.Close()

	conf := o.configuration()
	conf.Cmd = model.EXTRACTIMAGES
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return newError(op, KindSourceRead, source, err)
	}

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := checkContext(ctx, op, source); err != nil {
			return err
		}

		// Stubs carry the dimensions, full extraction carries the bytes.
		stubs, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, true)
		if err != nil {
			return newError(op, KindSourceRead, source, err)
		}
		images, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			return newError(op, KindSourceRead, source, err)
		}

		for _, img := range sortedImages(images) {
			if err := checkContext(ctx, op, source); err != nil {
				return err
			}

			pageIndex := pageNr - 1
			dest := filepath.Join(outputFolder, ImageFileName(pageIndex, img.Name, img.FileType))
			size, err := o.writeFile(dest, func(w io.Writer) error {
				_, err := io.Copy(w, img)
				return err
			})
			if err != nil {
				return newError(op, KindWrite, dest, err)
			}

			stub := stubs[img.ObjNr]
			result.Images = append(result.Images, models.ExtractedImage{
				PageIndex:    pageIndex,
				Name:         img.Name,
				FileType:     img.FileType,
				ObjectNumber: img.ObjNr,
				Width:        stub.Width,
				Height:       stub.Height,
				Path:         dest,
				Size:         size,
			})
		}
	}

	return nil
}

// sortedImages orders one page's images by object number; pdfcpu returns them keyed in a map.
func sortedImages(images map[int]model.Image) []model.Image {
	objNrs := make([]int, 0, len(images))
	for objNr := range images {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	sorted := make([]model.Image, 0, len(objNrs))
	for _, objNr := range objNrs {
		sorted = append(sorted, images[objNr])
	}
	return sorted
}
