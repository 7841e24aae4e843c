package layout

import (
	"errors"
	"fmt"
	"math"
)

// PageAll marks a placement replicated on every page.
const PageAll = -1

// Size is a physical width and height in millimetres.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement is one resolved stamp on one page. Origin is the lower-left
// corner of the box in bottom-left page coordinates. Shifted is set when the
// rule's box crossed a page edge and was moved back inside.
type Placement struct {
	AssetID  string  `json:"asset_id,omitempty"`
	Kind     Kind    `json:"kind"`
	Page     int     `json:"page"`
	Origin   Point   `json:"origin"`
	Size     Size    `json:"size"`
	FontSize float64 `json:"font_size,omitempty"`
	Shifted  bool    `json:"shifted,omitempty"`
}

// AssetCatalog reports native pixel dimensions of raster assets.
type AssetCatalog interface {
	Dimensions(assetID string) (width, height int, ok bool)
}

// Planner resolves placement tables against a grid.
type Planner struct {
	grid  GridSpec
	table Table
}

// NewPlanner validates the table once; the planner never mutates it afterwards.
func NewPlanner(grid GridSpec, table Table) (*Planner, error) {
	if table == nil {
		return nil, errors.New("layout planner: nil table")
	}
	if err := table.Validate(grid); err != nil {
		return nil, err
	}
	return &Planner{grid: grid, table: table}, nil
}

// Grid returns the grid the planner resolves against.
func (p *Planner) Grid() GridSpec { return p.grid }

// RequiredAssets lists the image assets a variant stamps.
func (p *Planner) RequiredAssets(variant Variant) []string {
	return p.table.RequiredAssets(variant)
}

// Plan returns the placements of a variant for a document of pageCount pages.
// A missing asset fails the whole plan and no placements are returned.
func (p *Planner) Plan(variant Variant, catalog AssetCatalog, pageCount int) ([]Placement, error) {
	if _, err := ParseVariant(string(variant)); err != nil {
		return nil, err
	}
	if pageCount < 1 {
		return nil, ErrNoPages
	}
	if catalog == nil {
		return nil, errors.New("layout planner: nil catalog")
	}
	rules := p.table[variant]
	for _, rule := range rules {
		if rule.Kind != KindImage {
			continue
		}
		if _, _, ok := catalog.Dimensions(rule.AssetID); !ok {
			return nil, &MissingAssetError{Variant: variant, AssetID: rule.AssetID}
		}
	}

	var out []Placement
	for _, rule := range rules {
		box, err := p.resolve(rule, catalog)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", variant, err)
		}
		pages, err := rule.Pages.pages(pageCount)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %s: %w", variant, rule.name(), err)
		}
		for _, page := range pages {
			placement := box
			placement.Page = page
			out = append(out, placement)
		}
	}
	return out, nil
}

// resolve computes the page-independent part of a placement.
func (p *Planner) resolve(rule Rule, catalog AssetCatalog) (Placement, error) {
	point, err := p.grid.PagePoint(rule.Cell, rule.From, rule.Offset)
	if err != nil {
		return Placement{}, err
	}
	placement := Placement{AssetID: rule.AssetID, Kind: rule.Kind}
	if rule.Kind == KindPageNumber {
		placement.FontSize = rule.FontSize
		if placement.FontSize == 0 {
			placement.FontSize = DefaultPageNumberFontSize
		}
		placement.Origin, placement.Shifted = p.fit(point, Size{})
		return placement, nil
	}

	pw, ph, _ := catalog.Dimensions(rule.AssetID)
	w, h := rule.Scale.Size(pw, ph)
	placement.Size = Size{Width: w, Height: h}
	if rule.Anchor == AnchorCenter {
		point.X -= w / 2
		point.Y -= h / 2
	}
	placement.Origin, placement.Shifted = p.fit(point, placement.Size)
	return placement, nil
}

const boundsTolerance = 1e-6

// fit moves a box the least distance that puts it inside the page, keeping its
// size. A box larger than the page on an axis is pinned to that axis' origin
// and clipped by the compositor.
func (p *Planner) fit(origin Point, size Size) (Point, bool) {
	x := clampAxis(origin.X, size.Width, p.grid.PageWidth)
	y := clampAxis(origin.Y, size.Height, p.grid.PageHeight)
	shifted := math.Abs(x-origin.X) > boundsTolerance || math.Abs(y-origin.Y) > boundsTolerance
	if !shifted {
		return origin, false
	}
	return Point{X: x, Y: y}, true
}

func clampAxis(start, length, limit float64) float64 {
	if start+length > limit {
		start = limit - length
	}
	if start < 0 {
		start = 0
	}
	return start
}
