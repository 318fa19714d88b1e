package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type PDFExtractImagesQuery struct {
	Source       models.SourceInfo `json:"source"`
	OutputFolder string            `json:"output_folder"`
}

type PDFExtractImagesResponse struct {
	OutputFolder string                  `json:"output_folder"`
	ImageCount   int                     `json:"image_count"`
	Images       []models.ExtractedImage `json:"images"`
}

func PDFExtractImagesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFExtractImagesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-extract-images",
		Description: "Extract every embedded image of a PDF into output_folder as p<page>_<name>.<ext> (page is 0-indexed). The folder is created if it does not exist.",
		InputSchema: inputschema,
	}
}

func PDFExtractImagesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFExtractImagesQuery, org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) (*mcp.CallToolResult, *PDFExtractImagesResponse, error) {
	log.Info("pdf-extract-images tool called")

	if query.OutputFolder == "" {
		return nil, nil, errors.New("output_folder is required")
	}

	staged, err := stageSource(ctx, resolver, query.Source, log)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup(staged, log)

	extracted, err := org.ExtractImages(ctx, staged.Path, query.OutputFolder)
	if err != nil {
		return nil, nil, fmt.Errorf("%d images written before failure: %w", extracted.Count(), err)
	}

	var total int64
	for _, img := range extracted.Images {
		total += img.Size
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Extracted %d images (%s) from %s into %s",
					extracted.Count(),
					humanize.Bytes(uint64(total)),
					staged.Origin,
					extracted.OutputFolder),
			},
		},
	}

	return result, &PDFExtractImagesResponse{
		OutputFolder: extracted.OutputFolder,
		ImageCount:   extracted.Count(),
		Images:       extracted.Images,
	}, nil
}
