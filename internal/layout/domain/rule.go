package layout

import (
	"fmt"
	"sort"
)

// MillimetresPerPixel converts raster pixels to millimetres at 96 DPI.
const MillimetresPerPixel = 0.264583

// Kind distinguishes raster stamps from rendered text.
type Kind string

const (
	KindImage      Kind = "image"
	KindPageNumber Kind = "page-number"
)

// Anchor states which point of the placed box lands on the resolved grid point.
type Anchor string

const (
	// AnchorCenter centers the box on the point.
	AnchorCenter Anchor = "center"
	// AnchorCorner puts the box's lower-left corner on the point.
	AnchorCorner Anchor = "corner"
)

// Scale sizes an image either relative to its native size or absolutely.
// A zero Factor means 1. Width and Height, when both set, take precedence.
type Scale struct {
	Divisor float64 `json:"divisor" yaml:"divisor"`
	Factor  float64 `json:"factor" yaml:"factor"`
	Width   float64 `json:"width_mm" yaml:"width_mm"`
	Height  float64 `json:"height_mm" yaml:"height_mm"`
}

func (s Scale) explicit() bool { return s.Width > 0 && s.Height > 0 }

// Size returns the physical size for an image of the given pixel dimensions.
func (s Scale) Size(pixelWidth, pixelHeight int) (width, height float64) {
	if s.explicit() {
		return s.Width, s.Height
	}
	divisor := s.Divisor
	if divisor == 0 {
		divisor = 1
	}
	factor := s.Factor
	if factor == 0 {
		factor = 1
	}
	width = float64(pixelWidth) * MillimetresPerPixel / divisor * factor
	height = float64(pixelHeight) * MillimetresPerPixel / divisor * factor
	return width, height
}

func (s Scale) validate() error {
	if s.explicit() {
		return nil
	}
	if s.Width != 0 || s.Height != 0 {
		return fmt.Errorf("%w: explicit size needs both width and height", ErrInvalidRule)
	}
	if s.Divisor < 0 || s.Factor < 0 {
		return fmt.Errorf("%w: negative scale", ErrInvalidRule)
	}
	return nil
}

// PageSelector chooses the pages a rule applies to. Exactly one field is set.
type PageSelector struct {
	Page  *int `json:"page,omitempty" yaml:"page,omitempty"`
	First int  `json:"first,omitempty" yaml:"first,omitempty"`
	Every bool `json:"every,omitempty" yaml:"every,omitempty"`
	Last  bool `json:"last,omitempty" yaml:"last,omitempty"`
}

// OnPage selects a single 0-based page.
func OnPage(n int) PageSelector { return PageSelector{Page: &n} }

// FirstPages selects pages 0..n-1.
func FirstPages(n int) PageSelector { return PageSelector{First: n} }

// EveryPage selects all pages.
func EveryPage() PageSelector { return PageSelector{Every: true} }

// LastPage selects the final page.
func LastPage() PageSelector { return PageSelector{Last: true} }

func (p PageSelector) validate() error {
	set := 0
	if p.Page != nil {
		set++
		if *p.Page < 0 {
			return fmt.Errorf("%w: negative page %d", ErrInvalidRule, *p.Page)
		}
	}
	if p.First != 0 {
		set++
		if p.First < 0 {
			return fmt.Errorf("%w: negative first %d", ErrInvalidRule, p.First)
		}
	}
	if p.Every {
		set++
	}
	if p.Last {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: page selector must set exactly one of page, first, every, last", ErrInvalidRule)
	}
	return nil
}

// pages resolves the selector against a document length. Every page is
// reported as a single PageAll entry.
func (p PageSelector) pages(pageCount int) ([]int, error) {
	switch {
	case p.Every:
		return []int{PageAll}, nil
	case p.Last:
		return []int{pageCount - 1}, nil
	case p.Page != nil:
		if *p.Page >= pageCount {
			return nil, fmt.Errorf("%w: page %d of %d", ErrOutOfBounds, *p.Page, pageCount)
		}
		return []int{*p.Page}, nil
	default:
		n := p.First
		if n > pageCount {
			n = pageCount
		}
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
}

// Rule is one declarative (variant, asset) placement entry.
type Rule struct {
	AssetID  string       `json:"asset" yaml:"asset"`
	Kind     Kind         `json:"kind" yaml:"kind"`
	Cell     CellAddress  `json:"cell" yaml:"cell"`
	From     Reference    `json:"from" yaml:"from"`
	Offset   Offset       `json:"offset" yaml:"offset"`
	Anchor   Anchor       `json:"anchor" yaml:"anchor"`
	Scale    Scale        `json:"scale" yaml:"scale"`
	FontSize float64      `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Pages    PageSelector `json:"pages" yaml:"pages"`
}

// DefaultPageNumberFontSize is used when a page-number rule omits its size.
const DefaultPageNumberFontSize = 10

// Validate checks a rule against a grid.
func (r Rule) Validate(grid GridSpec) error {
	switch r.Kind {
	case KindImage:
		if r.AssetID == "" {
			return fmt.Errorf("%w: image rule without asset", ErrInvalidRule)
		}
	case KindPageNumber:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidRule, r.Kind)
	}
	if _, _, err := grid.RowColumn(r.Cell); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.name(), err)
	}
	if _, err := r.From.fraction(); err != nil {
		return err
	}
	if r.Anchor != AnchorCenter && r.Anchor != AnchorCorner {
		return fmt.Errorf("%w: %s: anchor %q", ErrInvalidRule, r.name(), r.Anchor)
	}
	if err := r.Scale.validate(); err != nil {
		return err
	}
	if err := r.Pages.validate(); err != nil {
		return fmt.Errorf("%s: %w", r.name(), err)
	}
	return nil
}

func (r Rule) name() string {
	if r.AssetID != "" {
		return r.AssetID
	}
	return string(r.Kind)
}

// Table maps each variant to its placement rules.
type Table map[Variant][]Rule

// Validate checks every rule of every variant.
func (t Table) Validate(grid GridSpec) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	for variant, rules := range t {
		if _, err := ParseVariant(string(variant)); err != nil {
			return err
		}
		for _, rule := range rules {
			if err := rule.Validate(grid); err != nil {
				return fmt.Errorf("variant %s: %w", variant, err)
			}
		}
	}
	return nil
}

// RequiredAssets lists the image assets a variant stamps, sorted.
func (t Table) RequiredAssets(variant Variant) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rule := range t[variant] {
		if rule.Kind != KindImage {
			continue
		}
		if _, ok := seen[rule.AssetID]; ok {
			continue
		}
		seen[rule.AssetID] = struct{}{}
		out = append(out, rule.AssetID)
	}
	sort.Strings(out)
	return out
}
