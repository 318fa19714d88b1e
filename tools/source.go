package tools

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
	"github.com/Epistemic-Technology/pdf-organizer/models"
)

// stageSource resolves one tool input source. The caller must Cleanup the result.
func stageSource(ctx context.Context, resolver *sources.Resolver, source models.SourceInfo, log logger.Logger) (*sources.Staged, error) {
	staged, err := resolver.Resolve(ctx, source)
	if err != nil {
		log.Error("Failed to resolve source: %v", err)
		return nil, fmt.Errorf("failed to resolve source: %w", err)
	}
	return staged, nil
}

func cleanup(staged interface{ Cleanup() error }, log logger.Logger) {
	if err := staged.Cleanup(); err != nil {
		log.Warn("%v", err)
	}
}
