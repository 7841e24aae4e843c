package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGrid is returned for grids with non-positive dimensions.
	ErrInvalidGrid = errors.New("layout: invalid grid")
	// ErrCellOutOfRange is returned when a cell index or row/column lies outside the grid.
	ErrCellOutOfRange = errors.New("layout: cell out of range")
	// ErrUnknownVariant is returned for an unsupported document variant.
	ErrUnknownVariant = errors.New("layout: unknown document variant")
	// ErrInvalidRule is returned when a placement rule cannot be evaluated.
	ErrInvalidRule = errors.New("layout: invalid placement rule")
	// ErrMissingAsset is returned when a variant requires an asset the catalog lacks.
	ErrMissingAsset = errors.New("layout: missing asset")
	// ErrNoPages is returned when planning for a document without pages.
	ErrNoPages = errors.New("layout: document has no pages")
	// ErrOutOfBounds is returned when a placement targets a page the document lacks.
	ErrOutOfBounds = errors.New("layout: placement out of page bounds")
)

// MissingAssetError names the asset and the variant that requires it.
type MissingAssetError struct {
	Variant Variant
	AssetID string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("layout: missing asset %q for variant %q", e.AssetID, e.Variant)
}

// Unwrap lets errors.Is match ErrMissingAsset.
func (e *MissingAssetError) Unwrap() error { return ErrMissingAsset }
