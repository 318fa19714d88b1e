package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type PDFSplitQuery struct {
	Source       models.SourceInfo `json:"source"`
	OutputFolder string            `json:"output_folder"`
}

type PDFSplitResponse struct {
	OutputFolder string            `json:"output_folder"`
	PageCount    int               `json:"page_count"`
	Files        []models.PageFile `json:"files"`
}

func PDFSplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-split",
		Description: "Split a PDF into single-page documents named page_1.pdf, page_2.pdf, ... inside output_folder. The folder is created if it does not exist.",
		InputSchema: inputschema,
	}
}

func PDFSplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSplitQuery, org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) (*mcp.CallToolResult, *PDFSplitResponse, error) {
	log.Info("pdf-split tool called")

	if query.OutputFolder == "" {
		return nil, nil, errors.New("output_folder is required")
	}

	staged, err := stageSource(ctx, resolver, query.Source, log)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup(staged, log)

	split, err := org.Split(ctx, staged.Path, query.OutputFolder)
	if err != nil {
		return nil, nil, fmt.Errorf("%d page files written before failure: %w", len(split.Files), err)
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Split %s into %d pages in %s", staged.Origin, split.PageCount, split.OutputFolder),
			},
		},
	}

	return result, &PDFSplitResponse{
		OutputFolder: split.OutputFolder,
		PageCount:    split.PageCount,
		Files:        split.Files,
	}, nil
}
