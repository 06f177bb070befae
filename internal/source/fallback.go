package source

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// FallbackSource chains retrieval strategies, trying each in order until one
// succeeds for the requested table.
//
// A table that fails every strategy yields an empty slice and no error: a
// single unreachable table must not kill the run. The orchestrator treats
// "every table empty" as the fatal case instead.
type FallbackSource struct {
	sources []Source
	logger  *log.Logger
}

// NewFallbackSource creates a fallback chain over the given strategies.
func NewFallbackSource(logger *log.Logger, sources ...Source) *FallbackSource {
	return &FallbackSource{sources: sources, logger: logger}
}

// Name returns the chained strategy names.
func (s *FallbackSource) Name() string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

// Fetch tries each strategy in order and returns the first successful result.
func (s *FallbackSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	for i, src := range s.sources {
		rows, err := src.Fetch(ctx, table)
		if err == nil {
			return rows, nil
		}

		if s.logger != nil {
			if i < len(s.sources)-1 {
				s.logger.Warn("source strategy failed, trying next", "strategy", src.Name(), "table", table, "err", err)
			} else {
				s.logger.Error("all source strategies failed", "table", table, "err", err)
			}
		}
	}

	return []Row{}, nil
}
