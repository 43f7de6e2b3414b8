package deals

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var defaultCatalog []byte

type catalog struct {
	Deals []Deal `yaml:"deals"`
}

// CatalogCollector serves a curated list of deals. The list is read from
// path on every run so edits apply without a restart; with no path the
// built-in catalog is used.
type CatalogCollector struct {
	path     string
	validate *validator.Validate
}

func NewCatalogCollector(path string) *CatalogCollector {
	return &CatalogCollector{
		path:     path,
		validate: validator.New(),
	}
}

func (c *CatalogCollector) Run(ctx context.Context) ([]Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.load()
	if err != nil {
		return nil, err
	}

	deals, err := c.Parse(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Deal catalog loaded", "deals", len(deals), "file", c.path)
	return deals, nil
}

func (c *CatalogCollector) load() ([]byte, error) {
	if c.path == "" {
		return defaultCatalog, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deal catalog: %w", err)
	}
	return data, nil
}

// Parse decodes and validates a YAML deal catalog.
func (c *CatalogCollector) Parse(data []byte) ([]Deal, error) {
	var parsed catalog
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse deal catalog: %w", err)
	}

	for i, deal := range parsed.Deals {
		if err := c.validate.Struct(deal); err != nil {
			return nil, fmt.Errorf("invalid deal #%d (%q): %w", i+1, deal.Title, err)
		}
	}

	return parsed.Deals, nil
}
