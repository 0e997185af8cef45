// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every article to path in the same YAML schema the
// importer accepts, so an exported corpus round-trips.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	articles, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
