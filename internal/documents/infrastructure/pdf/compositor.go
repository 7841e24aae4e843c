package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"loan-docs/internal/assets"
	"loan-docs/internal/documents/application"
	layout "loan-docs/internal/layout/domain"
)

// AssetSource returns raster bytes for an asset id.
type AssetSource interface {
	Get(id string) (assets.Asset, bool)
}

// Compositor imports base pages with gofpdi and draws placements over them.
type Compositor struct {
	grid      layout.GridSpec
	assets    AssetSource
	debugGrid bool
}

// NewCompositor constructs a compositor. With debugGrid set every page also
// gets the numbered calibration grid.
func NewCompositor(grid layout.GridSpec, source AssetSource, debugGrid bool) (*Compositor, error) {
	if source == nil {
		return nil, errors.New("pdf compositor: nil asset source")
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return &Compositor{grid: grid, assets: source, debugGrid: debugGrid}, nil
}

var _ application.Compositor = (*Compositor)(nil)

// Compose returns base with every placement drawn on top. Pages without
// placements are copied unchanged.
func (c *Compositor) Compose(ctx context.Context, base application.BaseDocument, placements []layout.Placement) (out []byte, err error) {
	if base.Pages < 1 || len(base.PDF) == 0 {
		return nil, layout.ErrNoPages
	}
	byPage, err := c.group(placements, base.Pages)
	if err != nil {
		return nil, err
	}

	// gofpdi panics on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("pdf compositor: import failed: %v", rec)
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	registered := make(map[string]string)

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(base.PDF))
	for page := 0; page < base.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tpl := importer.ImportPageFromStream(pdf, &rs, page+1, "/MediaBox")
		pdf.AddPage()
		importer.UseImportedTemplate(pdf, tpl, 0, 0, c.grid.PageWidth, c.grid.PageHeight)

		for _, placement := range byPage[page] {
			if err := c.draw(pdf, placement, page, registered); err != nil {
				return nil, err
			}
		}
		if c.debugGrid {
			c.drawGrid(pdf)
		}
		if pdf.Err() {
			return nil, pdf.Error()
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// group expands PageAll placements and indexes placements by page.
func (c *Compositor) group(placements []layout.Placement, pages int) (map[int][]layout.Placement, error) {
	byPage := make(map[int][]layout.Placement)
	for _, placement := range placements {
		if placement.Page == layout.PageAll {
			for page := 0; page < pages; page++ {
				byPage[page] = append(byPage[page], placement)
			}
			continue
		}
		if placement.Page < 0 || placement.Page >= pages {
			return nil, fmt.Errorf("%w: page %d of %d", layout.ErrOutOfBounds, placement.Page, pages)
		}
		byPage[placement.Page] = append(byPage[placement.Page], placement)
	}
	return byPage, nil
}

func (c *Compositor) draw(pdf *gofpdf.Fpdf, placement layout.Placement, page int, registered map[string]string) error {
	switch placement.Kind {
	case layout.KindPageNumber:
		pdf.SetFont(fontFamily, "", placement.FontSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(placement.Origin.X, c.grid.FlipY(placement.Origin.Y), strconv.Itoa(page+1))
		return nil
	case layout.KindImage:
		asset, ok := c.assets.Get(placement.AssetID)
		if !ok {
			return &layout.MissingAssetError{AssetID: placement.AssetID}
		}
		options := gofpdf.ImageOptions{ImageType: asset.Type}
		name, ok := registered[asset.ID]
		if !ok {
			name = "asset-" + asset.ID
			pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(asset.Data))
			registered[asset.ID] = name
		}
		// Placement origins are bottom-left; gofpdf measures from the top.
		top := c.grid.FlipY(placement.Origin.Y + placement.Size.Height)
		pdf.ImageOptions(name, placement.Origin.X, top, placement.Size.Width, placement.Size.Height, false, options, 0, "")
		return nil
	default:
		return fmt.Errorf("%w: kind %q", layout.ErrInvalidRule, placement.Kind)
	}
}

func (c *Compositor) drawGrid(pdf *gofpdf.Fpdf) {
	cw, ch := c.grid.CellWidth(), c.grid.CellHeight()
	pdf.SetDrawColor(255, 0, 0)
	pdf.SetLineWidth(0.1)
	pdf.SetTextColor(255, 0, 0)
	pdf.SetFont(fontFamily, "", 4)
	for column := 0; column <= c.grid.Columns; column++ {
		x := float64(column) * cw
		pdf.Line(x, 0, x, c.grid.PageHeight)
	}
	for row := 0; row <= c.grid.Rows; row++ {
		y := float64(row) * ch
		pdf.Line(0, y, c.grid.PageWidth, y)
	}
	for row := 0; row < c.grid.Rows; row++ {
		for column := 0; column < c.grid.Columns; column++ {
			index, err := c.grid.Address(row, column)
			if err != nil {
				continue
			}
			pdf.Text(float64(column)*cw+0.5, float64(row)*ch+2, strconv.Itoa(int(index)))
		}
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
}
