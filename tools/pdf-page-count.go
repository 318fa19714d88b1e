package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type PDFPageCountQuery struct {
	Source models.SourceInfo `json:"source"`
}

type PDFPageCountResponse struct {
	PageCount int `json:"page_count"`
}

func PDFPageCountTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFPageCountQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-page-count",
		Description: "Return the number of pages of a PDF. Valid page indices for pdf-select-pages are 0 to page_count-1.",
		InputSchema: inputschema,
	}
}

func PDFPageCountToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFPageCountQuery, org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) (*mcp.CallToolResult, *PDFPageCountResponse, error) {
	log.Info("pdf-page-count tool called")

	staged, err := stageSource(ctx, resolver, query.Source, log)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup(staged, log)

	count, err := org.PageCount(ctx, staged.Path)
	if err != nil {
		return nil, nil, err
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s has %d pages", staged.Origin, count)},
		},
	}

	return result, &PDFPageCountResponse{PageCount: count}, nil
}
