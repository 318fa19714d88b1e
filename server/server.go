package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/Epistemic-Technology/pdf-organizer/internal/config"
	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/resources"
	"github.com/Epistemic-Technology/pdf-organizer/tools"
)

const version = "v0.1.0"

// CreateServer builds the MCP server from conf, working on the OS filesystem.
func CreateServer(conf *config.Config, log logger.Logger) (*mcp.Server, error) {
	fs := afero.NewOsFs()

	if err := fs.MkdirAll(conf.StagingDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	log.Info("Staging remote sources in: %s", conf.StagingDir())

	org := organizer.New(fs, log, organizer.WithConfiguration(conf.PDF.Configuration()))
	resolver := sources.NewResolverFromConfig(conf, fs, log)

	return NewServer(org, resolver, log), nil
}

// NewServer registers the PDF organizing tools and the page layout resource.
func NewServer(org *organizer.Organizer, resolver *sources.Resolver, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "pdf-organizer", Version: version}, nil)

	pdfResourceHandler := resources.NewPDFResourceHandler(org)

	mcp.AddTool(server, tools.PDFMergeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFMergeQuery) (*mcp.CallToolResult, *tools.PDFMergeResponse, error) {
		return tools.PDFMergeToolHandler(ctx, req, query, org, resolver, log)
	})

	mcp.AddTool(server, tools.PDFSplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSplitQuery) (*mcp.CallToolResult, *tools.PDFSplitResponse, error) {
		return tools.PDFSplitToolHandler(ctx, req, query, org, resolver, log)
	})

	mcp.AddTool(server, tools.PDFSelectPagesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSelectPagesQuery) (*mcp.CallToolResult, *tools.PDFSelectPagesResponse, error) {
		return tools.PDFSelectPagesToolHandler(ctx, req, query, org, resolver, log)
	})

	mcp.AddTool(server, tools.PDFExtractImagesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFExtractImagesQuery) (*mcp.CallToolResult, *tools.PDFExtractImagesResponse, error) {
		return tools.PDFExtractImagesToolHandler(ctx, req, query, org, resolver, log)
	})

	mcp.AddTool(server, tools.PDFPageCountTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFPageCountQuery) (*mcp.CallToolResult, *tools.PDFPageCountResponse, error) {
		return tools.PDFPageCountToolHandler(ctx, req, query, org, resolver, log)
	})

	// Page sizes of a local file: pdf-file:///abs/path.pdf or pdf-file:///abs/path.pdf/pages/{index}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "pdf-file://{+path}",
		Name:        "pdf-layout",
		Description: "Page count and page sizes of a local PDF file; append /pages/{index} for a single 0-indexed page",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return pdfResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}
