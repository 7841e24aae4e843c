package pdf

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	layout "loan-docs/internal/layout/domain"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Block types.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockSchedule  = "schedule"
	BlockSpacer    = "spacer"
)

// Block is one element of a document body.
type Block struct {
	Type   string  `yaml:"type"`
	Text   string  `yaml:"text"`
	Align  string  `yaml:"align"`
	Height float64 `yaml:"height"`
}

// Signature is the band reserved at the foot of the final page.
type Signature struct {
	Labels []string `yaml:"labels"`
}

// Template describes one document variant.
type Template struct {
	FontSize     float64    `yaml:"font_size"`
	BorderPt     float64    `yaml:"border_pt"`
	SinglePage   bool       `yaml:"single_page"`
	TopSpaceMM   float64    `yaml:"top_space_mm"`
	StampedPages int        `yaml:"stamped_pages"`
	Blocks       []Block    `yaml:"blocks"`
	Signature    *Signature `yaml:"signature"`
}

// Templates maps variants to their templates.
type Templates map[layout.Variant]Template

// Validate checks every variant has a usable template.
func (t Templates) Validate() error {
	for _, variant := range layout.Variants {
		tpl, ok := t[variant]
		if !ok {
			return fmt.Errorf("templates: missing variant %s", variant)
		}
		if tpl.FontSize <= 0 {
			return fmt.Errorf("templates: %s: font size must be positive", variant)
		}
		if len(tpl.Blocks) == 0 {
			return fmt.Errorf("templates: %s: no blocks", variant)
		}
		for i, block := range tpl.Blocks {
			switch block.Type {
			case BlockHeading, BlockParagraph, BlockSchedule, BlockSpacer:
			default:
				return fmt.Errorf("templates: %s: block %d: unknown type %q", variant, i, block.Type)
			}
		}
	}
	return nil
}

// LoadTemplates loads the embedded templates and, when dir is set, replaces
// each variant for which dir holds "<variant>.yaml".
func LoadTemplates(dir string) (Templates, error) {
	templates, err := ParseTemplates(defaultTemplates)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return templates, nil
	}
	for _, variant := range layout.Variants {
		data, err := os.ReadFile(filepath.Join(dir, string(variant)+".yaml"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var tpl Template
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("templates: %s: %w", variant, err)
		}
		templates[variant] = tpl
	}
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	return templates, nil
}

// ParseTemplates decodes a YAML document keyed by variant name.
func ParseTemplates(data []byte) (Templates, error) {
	var raw map[string]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	templates := make(Templates, len(raw))
	for name, tpl := range raw {
		variant, err := layout.ParseVariant(name)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		templates[variant] = tpl
	}
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	return templates, nil
}
