package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/depositagent/types"
)

type FailbackExtractor struct {
	extractors []Extractor
}

func NewFailbackExtractor(extractors ...Extractor) *FailbackExtractor {
	return &FailbackExtractor{extractors: extractors}
}

func (e *FailbackExtractor) Extract(ctx context.Context, req *Request) (types.Extraction, error) {
	var lastErr error
	for i, extractor := range e.extractors {
		out, err := extractor.Extract(ctx, req)
		if err == nil {
			return out, nil
		}
		slog.Debug("Extractor failed, trying next", "index", i, "error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
