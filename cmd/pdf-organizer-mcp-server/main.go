package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-organizer/internal/config"
	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/server"
)

func main() {
	conf, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(conf.LogConfig())
	if err != nil {
		// Fall back to stderr if logger initialization fails
		panic(err)
	}

	log.Info("Starting pdf-organizer MCP server")

	srv, err := server.CreateServer(conf, log)
	if err != nil {
		log.Fatal("Failed to create server: %v", err)
	}

	err = srv.Run(context.Background(), &mcp.StdioTransport{})
	if err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
