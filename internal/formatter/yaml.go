package formatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// productRow is the YAML shape of a product. Category is written by name.
type productRow struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	Performers []string `yaml:"performers,omitempty"`
	Genres     []string `yaml:"genres,omitempty"`
	Released   string   `yaml:"released,omitempty"`
	Duration   int      `yaml:"duration,omitempty"`
	Price      string   `yaml:"price,omitempty"`
}

type chartDoc struct {
	Chart    `yaml:",inline"`
	Products []productRow `yaml:"products"`
}

// ExportToYAML renders chart as a YAML document.
func ExportToYAML(chart *Chart) ([]byte, error) {
	doc := chartDoc{Chart: *chart, Products: make([]productRow, 0, len(chart.Products))}
	for _, p := range chart.Products {
		row := productRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category.String(),
			Released: releaseDate(p),
			Duration: p.Duration,
			Price:    price(p),
		}
		for _, a := range p.Performers {
			row.Performers = append(row.Performers, a.Name)
		}
		for _, g := range p.Genres {
			row.Genres = append(row.Genres, g.Name)
		}
		doc.Products = append(doc.Products, row)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// ToYAML marshals any value, for the CLI's --yaml flag.
func ToYAML(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}
