package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

const scheme = "pdf-file://"

// PDFLayout is the JSON body of a pdf-file:// resource
type PDFLayout struct {
	Path      string            `json:"path"`
	PageCount int               `json:"page_count"`
	Pages     []models.PageSize `json:"pages"`
}

// PDFResourceHandler serves page layout information about local PDF files
type PDFResourceHandler struct {
	org *organizer.Organizer
}

func NewPDFResourceHandler(org *organizer.Organizer) *PDFResourceHandler {
	return &PDFResourceHandler{org: org}
}

// ReadResource reads pdf-file://<path> (all pages) or
// pdf-file://<path>/pages/<index> (one 0-indexed page).
func (h *PDFResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	path, index, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	sizes, err := h.org.Layout(ctx, path)
	if err != nil {
		if organizer.KindOf(err) == organizer.KindSourceRead {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, err
	}

	var body any
	if index >= 0 {
		if index >= len(sizes) {
			return nil, fmt.Errorf("page index %d out of range (document has %d pages)", index, len(sizes))
		}
		body = sizes[index]
	} else {
		body = PDFLayout{Path: path, PageCount: len(sizes), Pages: sizes}
	}

	content, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

// parseURI splits a resource URI into the file path and an optional page
// index, which is -1 when the URI names the whole document.
func parseURI(uri string) (string, int, error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", -1, fmt.Errorf("invalid URI scheme, expected %s", scheme)
	}
	path := strings.TrimPrefix(uri, scheme)
	if path == "" {
		return "", -1, errors.New("invalid URI, missing file path")
	}

	// Only an all-digit suffix is a page reference; anything else is a file
	// that happens to live under a pages/ directory.
	i := strings.LastIndex(path, "/pages/")
	if i <= 0 || !isDigits(path[i+len("/pages/"):]) {
		return path, -1, nil
	}

	index, err := strconv.Atoi(path[i+len("/pages/"):])
	if err != nil {
		return "", -1, fmt.Errorf("invalid page index: %s", path[i+len("/pages/"):])
	}
	return path[:i], index, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
