package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	layout "loan-docs/internal/layout/domain"
)

//go:embed placements.yaml
var defaultPlacements []byte

// Fraction is a float that also accepts "a/b" in YAML.
type Fraction float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Fraction) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected number or fraction", node.Line)
	}
	value, err := parseFraction(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*f = Fraction(value)
	return nil
}

func parseFraction(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		return strconv.ParseFloat(raw, 64)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("fraction %q has zero denominator", raw)
	}
	return n / d, nil
}

type gridDoc struct {
	Columns    int     `yaml:"columns"`
	Rows       int     `yaml:"rows"`
	PageWidth  float64 `yaml:"page_width_mm"`
	PageHeight float64 `yaml:"page_height_mm"`
}

type offsetDoc struct {
	Rows    Fraction `yaml:"rows"`
	Columns Fraction `yaml:"columns"`
}

type ruleDoc struct {
	Asset    string              `yaml:"asset"`
	Kind     string              `yaml:"kind"`
	Cell     int                 `yaml:"cell"`
	From     string              `yaml:"from"`
	Offset   offsetDoc           `yaml:"offset"`
	Anchor   string              `yaml:"anchor"`
	Scale    layout.Scale        `yaml:"scale"`
	FontSize float64             `yaml:"font_size"`
	Pages    layout.PageSelector `yaml:"pages"`
}

type placementsDoc struct {
	Grid     *gridDoc             `yaml:"grid"`
	Variants map[string][]ruleDoc `yaml:"variants"`
}

// Placements is the loaded grid and per-variant rule table.
type Placements struct {
	Grid  layout.GridSpec
	Table layout.Table
}

// LoadPlacements reads the table at path, or the embedded default when path is empty.
func LoadPlacements(path string) (Placements, error) {
	data := defaultPlacements
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Placements{}, err
		}
		data = raw
	}
	return ParsePlacements(data)
}

// ParsePlacements decodes and validates a placement table.
func ParsePlacements(data []byte) (Placements, error) {
	var doc placementsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Placements{}, fmt.Errorf("placements: %w", err)
	}
	if len(doc.Variants) == 0 {
		return Placements{}, errors.New("placements: no variants")
	}

	grid := layout.A4Grid
	if doc.Grid != nil {
		grid = layout.GridSpec{
			Columns:    doc.Grid.Columns,
			Rows:       doc.Grid.Rows,
			PageWidth:  doc.Grid.PageWidth,
			PageHeight: doc.Grid.PageHeight,
		}
	}

	table := make(layout.Table, len(doc.Variants))
	for name, rules := range doc.Variants {
		variant, err := layout.ParseVariant(name)
		if err != nil {
			return Placements{}, fmt.Errorf("placements: %w", err)
		}
		out := make([]layout.Rule, 0, len(rules))
		for _, r := range rules {
			out = append(out, r.toRule())
		}
		table[variant] = out
	}
	if err := table.Validate(grid); err != nil {
		return Placements{}, fmt.Errorf("placements: %w", err)
	}
	return Placements{Grid: grid, Table: table}, nil
}

func (r ruleDoc) toRule() layout.Rule {
	kind := layout.Kind(r.Kind)
	if kind == "" {
		kind = layout.KindImage
	}
	from := layout.Reference(r.From)
	if from == "" {
		from = layout.FromCenter
	}
	anchor := layout.Anchor(r.Anchor)
	if anchor == "" {
		anchor = layout.AnchorCenter
	}
	return layout.Rule{
		AssetID:  r.Asset,
		Kind:     kind,
		Cell:     layout.CellAddress(r.Cell),
		From:     from,
		Offset:   layout.Offset{Rows: float64(r.Offset.Rows), Columns: float64(r.Offset.Columns)},
		Anchor:   anchor,
		Scale:    r.Scale,
		FontSize: r.FontSize,
		Pages:    r.Pages,
	}
}
