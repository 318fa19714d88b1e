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

type PDFMergeQuery struct {
	Sources     []models.SourceInfo `json:"sources"`
	Destination string              `json:"destination"`
}

type PDFMergeResponse struct {
	Destination string `json:"destination"`
	SourceCount int    `json:"source_count"`
	PageCount   int    `json:"page_count"`
}

func PDFMergeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFMergeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-merge",
		Description: "Concatenate the pages of several PDF documents, in the given order, into a single PDF at destination. Each source is a local path, a URL or a Zotero attachment ID. The destination is overwritten.",
		InputSchema: inputschema,
	}
}

func PDFMergeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFMergeQuery, org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) (*mcp.CallToolResult, *PDFMergeResponse, error) {
	log.Info("pdf-merge tool called with %d sources", len(query.Sources))

	if query.Destination == "" {
		return nil, nil, errors.New("destination is required")
	}

	batch, err := resolver.ResolveAll(ctx, query.Sources)
	if err != nil {
		log.Error("Failed to resolve sources: %v", err)
		return nil, nil, fmt.Errorf("failed to resolve sources: %w", err)
	}
	defer cleanup(batch, log)

	merged, err := org.Merge(ctx, batch.Paths(), query.Destination)
	if err != nil {
		return nil, nil, err
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Merged %d documents (%d pages) into %s", merged.SourceCount, merged.PageCount, merged.Destination),
			},
		},
	}

	return result, &PDFMergeResponse{
		Destination: merged.Destination,
		SourceCount: merged.SourceCount,
		PageCount:   merged.PageCount,
	}, nil
}
