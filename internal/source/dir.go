package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// DirSource implements Source over a directory of {table}.json export files,
// the layout "snapshot fetch --format dir" writes.
type DirSource struct {
	dir string
}

// NewDirSource creates a source reading JSON exports from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name returns the strategy name.
func (s *DirSource) Name() string {
	return "export-dir"
}

// Fetch reads {dir}/{table}.json. A missing file is treated as an empty
// table rather than an error, since partial exports are expected.
func (s *DirSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	if !KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, table+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("%w: read export for %s: %v", shared.ErrSourceUnavailable, table, err)
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode export for %s: %w", table, err)
	}

	return rows, nil
}
