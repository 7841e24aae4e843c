package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedImage is returned for files the catalog cannot decode.
	ErrUnsupportedImage = errors.New("assets: unsupported image")
	// ErrDuplicateAsset is returned when two files map to the same asset id.
	ErrDuplicateAsset = errors.New("assets: duplicate asset id")
)

// Image types understood by the PDF layer.
const (
	TypePNG  = "PNG"
	TypeJPEG = "JPG"
	TypeGIF  = "GIF"
)

// Asset is one decoded raster stamp.
type Asset struct {
	ID     string
	Width  int
	Height int
	Type   string
	Data   []byte
}

// Catalog is a read-only asset lookup built once at startup.
type Catalog struct {
	assets map[string]Asset
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".bmp": {}, ".tif": {}, ".tiff": {}, ".webp": {},
}

// LoadDir builds a catalog from every image file in dir. The asset id is the
// file name without extension, so "sing_1.png" becomes "sing_1". Files with
// other extensions are ignored.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte)
	names := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if prev, ok := names[id]; ok {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateAsset, prev, entry.Name())
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		names[id] = entry.Name()
		files[id] = data
	}
	return NewCatalog(files)
}

// NewCatalog decodes raw image files keyed by asset id.
func NewCatalog(files map[string][]byte) (*Catalog, error) {
	c := &Catalog{assets: make(map[string]Asset, len(files))}
	for id, data := range files {
		asset, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		c.assets[id] = asset
	}
	return c, nil
}

func decode(id string, data []byte) (Asset, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, id, err)
	}
	asset := Asset{ID: id, Width: cfg.Width, Height: cfg.Height, Data: data}
	switch format {
	case "png":
		asset.Type = TypePNG
	case "jpeg":
		asset.Type = TypeJPEG
	case "gif":
		asset.Type = TypeGIF
	default:
		// bmp, tiff and webp are re-encoded so the PDF layer only sees PNG.
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return Asset{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, id, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return Asset{}, fmt.Errorf("assets: encode %s: %w", id, err)
		}
		asset.Type = TypePNG
		asset.Data = buf.Bytes()
	}
	if asset.Width == 0 || asset.Height == 0 {
		return Asset{}, fmt.Errorf("%w: %s: empty image", ErrUnsupportedImage, id)
	}
	return asset, nil
}

// Dimensions returns the native pixel size of an asset.
func (c *Catalog) Dimensions(id string) (width, height int, ok bool) {
	asset, ok := c.assets[id]
	if !ok {
		return 0, 0, false
	}
	return asset.Width, asset.Height, true
}

// Get returns an asset by id.
func (c *Catalog) Get(id string) (Asset, bool) {
	asset, ok := c.assets[id]
	return asset, ok
}

// IDs lists the catalog's asset ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.assets))
	for id := range c.assets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
