package organizer

import (
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Epistemic-Technology/pdf-organizer/models"
)

// Layout returns the size of every page of source, in page order.
func (o *Organizer) Layout(ctx context.Context, source string) ([]models.PageSize, error) {
	const op = "layout"

	var sizes []models.PageSize
	err := guard(op, source, func() error {
		if err := checkContext(ctx, op, source); err != nil {
			return err
		}
		f, err := o.openSource(op, source)
		if err != nil {
			return err
		}
		defer f.Close()

		dims, err := api.PageDims(f, o.configuration())
		if err != nil {
			return newError(op, KindSourceRead, source, err)
		}
		for i, dim := range dims {
			sizes = append(sizes, models.PageSize{PageIndex: i, Width: dim.Width, Height: dim.Height})
		}
		return nil
	})
	if err != nil {
		o.log.Error("%v", err)
		return nil, err
	}
	return sizes, nil
}
