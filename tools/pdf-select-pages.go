package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/pages"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

type PDFSelectPagesQuery struct {
	Source      models.SourceInfo `json:"source"`
	Destination string            `json:"destination"`
	Pages       []int             `json:"pages,omitempty"`     // 0-indexed, in output order
	PageList    string            `json:"page_list,omitempty"` // e.g. "2,0,4-6"; used when pages is empty
}

type PDFSelectPagesResponse struct {
	Destination string `json:"destination"`
	SourcePages int    `json:"source_pages"`
	PageCount   int    `json:"page_count"`
	Selected    []int  `json:"selected"`
	Skipped     []int  `json:"skipped,omitempty"`
}

func PDFSelectPagesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSelectPagesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-select-pages",
		Description: "Write a new PDF made of the given 0-indexed pages of the source, in the given order. Use it to reorder, delete (omit) or duplicate (repeat) pages. Pages may be given as a list of indices or as a page_list string such as \"2,0,4-6\". Indices outside the document are skipped and reported.",
		InputSchema: inputschema,
	}
}

// selection returns the page indices of query, preferring the explicit list.
func (query PDFSelectPagesQuery) selection() ([]int, error) {
	if len(query.Pages) > 0 {
		return query.Pages, nil
	}
	if query.PageList == "" {
		return nil, errors.New("one of pages or page_list is required")
	}
	return pages.Parse(query.PageList)
}

func PDFSelectPagesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSelectPagesQuery, org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) (*mcp.CallToolResult, *PDFSelectPagesResponse, error) {
	log.Info("pdf-select-pages tool called")

	if query.Destination == "" {
		return nil, nil, errors.New("destination is required")
	}
	indices, err := query.selection()
	if err != nil {
		log.Error("Invalid page selection: %v", err)
		return nil, nil, err
	}

	staged, err := stageSource(ctx, resolver, query.Source, log)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup(staged, log)

	selected, err := org.SelectPages(ctx, staged.Path, query.Destination, indices)
	if err != nil {
		return nil, nil, err
	}

	text := fmt.Sprintf("Wrote %d of %d pages to %s", selected.PageCount, selected.SourcePages, selected.Destination)
	if len(selected.Skipped) > 0 {
		text += fmt.Sprintf("; skipped out-of-range indices %v", selected.Skipped)
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}

	return result, &PDFSelectPagesResponse{
		Destination: selected.Destination,
		SourcePages: selected.SourcePages,
		PageCount:   selected.PageCount,
		Selected:    selected.Selected,
		Skipped:     selected.Skipped,
	}, nil
}
