package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	amortization "loan-docs/internal/amortization/domain"
	"loan-docs/internal/audit"
	"loan-docs/internal/auth"
	documentsapp "loan-docs/internal/documents/application"
	documents "loan-docs/internal/documents/domain"
	layout "loan-docs/internal/layout/domain"
)

const (
	documentsPath = "/api/v1/documents"

	headerRequestID = "X-Request-ID"
	headerDegraded  = "X-Overlay-Degraded"
)

// Generator produces finished documents.
type Generator interface {
	Generate(ctx context.Context, req documents.Request) (*documentsapp.Document, error)
}

// Handler provides document HTTP endpoints.
type Handler struct {
	generator   Generator
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(generator Generator, auditLogger audit.Logger, logger *log.Logger) (*Handler, error) {
	if generator == nil {
		return nil, errors.New("documents handler: nil generator")
	}
	if logger == nil {
		return nil, errors.New("documents handler: nil logger")
	}
	return &Handler{generator: generator, auditLogger: auditLogger, logger: logger}, nil
}

type generateRequest struct {
	Name     string              `json:"name"`
	Amount   decimal.NullDecimal `json:"amount"`
	Duration *int                `json:"duration"`
	TAN      decimal.NullDecimal `json:"tan"`
	TAEG     decimal.NullDecimal `json:"taeg"`
	Payment  decimal.NullDecimal `json:"payment"`
}

type variantInfo struct {
	Variant        layout.Variant    `json:"variant"`
	RequiredFields []documents.Field `json:"required_fields"`
}

// ServeHTTP handles GET /api/v1/documents and POST /api/v1/documents/{variant}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == documentsPath {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w)
		return
	}
	name := strings.TrimPrefix(path, documentsPath+"/")
	if name == path || name == "" || strings.Contains(name, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.handleGenerate(w, r, name)
}

func (h *Handler) handleList(w http.ResponseWriter) {
	out := make([]variantInfo, 0, len(layout.Variants))
	for _, variant := range layout.Variants {
		out = append(out, variantInfo{Variant: variant, RequiredFields: documents.RequiredFields(variant)})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request, name string) {
	variant, err := layout.ParseVariant(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	doc, err := h.generator.Generate(r.Context(), documents.Request{
		Variant:  variant,
		Name:     body.Name,
		Amount:   body.Amount,
		Duration: body.Duration,
		TAN:      body.TAN,
		TAEG:     body.TAEG,
		Payment:  body.Payment,
	})
	if err != nil {
		status := statusFor(err)
		var missing *layout.MissingAssetError
		if status == http.StatusInternalServerError && !errors.As(err, &missing) {
			http.Error(w, "document generation failed", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.audit(r, doc)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(variant)+`.pdf"`)
	w.Header().Set(headerRequestID, doc.RequestID)
	if doc.Degraded {
		w.Header().Set(headerDegraded, "true")
	}
	if _, err := w.Write(doc.PDF); err != nil {
		h.logger.Printf("documents handler write error: request=%s err=%v", doc.RequestID, err)
	}
}

func (h *Handler) audit(r *http.Request, doc *documentsapp.Document) {
	if h.auditLogger == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]any{
		"request_id": doc.RequestID,
		"pages":      doc.Pages,
		"degraded":   doc.Degraded,
	})
	entry := audit.Entry{
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        audit.ActionDocumentGenerate,
		ResourceType:  "document",
		ResourceID:    string(doc.Variant),
		Metadata:      metadata,
		PayloadDigest: audit.Digest(doc.PDF),
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("documents audit error: request=%s err=%v", doc.RequestID, err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, documents.ErrMissingField),
		errors.Is(err, documents.ErrInvalidField),
		errors.Is(err, amortization.ErrInvalidLoanTerms),
		errors.Is(err, layout.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
