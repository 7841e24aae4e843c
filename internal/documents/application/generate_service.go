package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	amortization "loan-docs/internal/amortization/domain"
	documents "loan-docs/internal/documents/domain"
	layout "loan-docs/internal/layout/domain"
	"loan-docs/internal/observability/metrics"
)

// BaseDocument is a rendered document before overlay.
type BaseDocument struct {
	PDF   []byte
	Pages int
}

// Renderer turns content into a paginated base document.
type Renderer interface {
	Render(ctx context.Context, content documents.Content) (BaseDocument, error)
}

// Compositor stamps placements onto a base document.
type Compositor interface {
	Compose(ctx context.Context, base BaseDocument, placements []layout.Placement) ([]byte, error)
}

// Document is a finished generation result.
type Document struct {
	RequestID string
	Variant   layout.Variant
	PDF       []byte
	Pages     int
	// Degraded is set when the overlay failed and the base document was returned.
	Degraded bool
}

// GenerateService runs validate, amortize, render, plan and composite for one request.
type GenerateService struct {
	renderer   Renderer
	compositor Compositor
	planner    *layout.Planner
	catalog    layout.AssetCatalog
	logger     *log.Logger
	now        func() time.Time
}

// NewGenerateService constructs the generation use case.
func NewGenerateService(renderer Renderer, compositor Compositor, planner *layout.Planner, catalog layout.AssetCatalog, logger *log.Logger) (*GenerateService, error) {
	if renderer == nil {
		return nil, errors.New("documents: nil renderer")
	}
	if compositor == nil {
		return nil, errors.New("documents: nil compositor")
	}
	if planner == nil {
		return nil, errors.New("documents: nil planner")
	}
	if catalog == nil {
		return nil, errors.New("documents: nil catalog")
	}
	if logger == nil {
		return nil, errors.New("documents: nil logger")
	}
	return &GenerateService{
		renderer:   renderer,
		compositor: compositor,
		planner:    planner,
		catalog:    catalog,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SetClock overrides the time source used for document dates.
func (s *GenerateService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CheckAssets reports the first asset a variant needs that the catalog lacks.
func (s *GenerateService) CheckAssets() error {
	for _, variant := range layout.Variants {
		for _, id := range s.planner.RequiredAssets(variant) {
			if _, _, ok := s.catalog.Dimensions(id); !ok {
				return &layout.MissingAssetError{Variant: variant, AssetID: id}
			}
		}
	}
	return nil
}

// Generate produces one document. Invalid input, missing assets and renderer
// failures abort the request; a compositor failure degrades to the base document.
func (s *GenerateService) Generate(ctx context.Context, req documents.Request) (*Document, error) {
	start := time.Now()
	requestID := uuid.NewString()
	variant := string(req.Variant)

	doc, err := s.generate(ctx, requestID, req)
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultError
		var missing *layout.MissingAssetError
		if errors.As(err, &missing) {
			metrics.IncMissingAsset(variant, missing.AssetID)
		}
		s.logger.Printf("document generate error: request=%s variant=%s err=%v", requestID, variant, err)
	case doc.Degraded:
		result = metrics.ResultDegraded
	}
	metrics.ObserveDocumentGenerate(variant, result, time.Since(start))
	return doc, err
}

func (s *GenerateService) generate(ctx context.Context, requestID string, req documents.Request) (*Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var schedule *amortization.Result
	if req.NeedsSchedule() {
		terms, err := req.LoanTerms()
		if err != nil {
			return nil, err
		}
		computed, err := amortization.Compute(terms)
		if err != nil {
			return nil, err
		}
		schedule = &computed
	}

	content, err := documents.BuildContent(req, schedule, s.now())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := s.renderer.Render(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", documents.ErrRenderingFailure, err)
	}

	placements, err := s.planner.Plan(req.Variant, s.catalog, base.Pages)
	if err != nil {
		return nil, err
	}
	for _, placement := range placements {
		if placement.Shifted {
			s.logger.Printf("document placement shifted: request=%s variant=%s asset=%s origin=(%.2f, %.2f)", requestID, req.Variant, placement.AssetID, placement.Origin.X, placement.Origin.Y)
		}
	}

	doc := &Document{RequestID: requestID, Variant: req.Variant, Pages: base.Pages}
	stamped, err := s.compositor.Compose(ctx, base, placements)
	if err != nil {
		s.logger.Printf("document overlay degraded: request=%s variant=%s err=%v", requestID, req.Variant, err)
		metrics.IncOverlayDegraded(string(req.Variant))
		doc.PDF = base.PDF
		doc.Degraded = true
		return doc, nil
	}
	doc.PDF = stamped
	s.logger.Printf("document generated: request=%s variant=%s pages=%d placements=%d", requestID, req.Variant, base.Pages, len(placements))
	return doc, nil
}
