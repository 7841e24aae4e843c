package interfaces

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	amortization "loan-docs/internal/amortization/domain"
	"loan-docs/internal/observability/metrics"
)

// ScheduleHandler serves repayment plans under /api/v1/schedules.
type ScheduleHandler struct {
	logger *log.Logger
}

// NewScheduleHandler constructs a handler.
func NewScheduleHandler(logger *log.Logger) (*ScheduleHandler, error) {
	if logger == nil {
		return nil, errors.New("schedule handler: nil logger")
	}
	return &ScheduleHandler{logger: logger}, nil
}

type scheduleRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Duration int             `json:"duration"`
	TAN      decimal.Decimal `json:"tan"`
}

type scheduleResponse struct {
	amortization.Result
	MonthlyRate string          `json:"monthly_rate"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// ServeHTTP handles POST /api/v1/schedules and the export.xlsx and export.csv
// subpaths.
func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/schedules":
		h.handleJSON(w, r)
	case "/api/v1/schedules/export.xlsx":
		h.handleXLSX(w, r)
	case "/api/v1/schedules/export.csv":
		h.handleCSV(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ScheduleHandler) handleJSON(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	terms, result, ok := h.compute(w, r)
	if !ok {
		metrics.ObserveScheduleExport("json", metrics.ResultError, time.Since(start))
		return
	}
	resp := scheduleResponse{
		Result:      result,
		MonthlyRate: terms.MonthlyRate().StringFixed(10),
		TotalPaid:   result.TotalPaid(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	metrics.ObserveScheduleExport("json", metrics.ResultSuccess, time.Since(start))
}

func (h *ScheduleHandler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	terms, result, ok := h.compute(w, r)
	if !ok {
		metrics.ObserveScheduleExport("xlsx", metrics.ResultError, time.Since(start))
		return
	}
	data, err := BuildScheduleXLSX(terms, result)
	if err != nil {
		h.logger.Printf("schedule export error: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		metrics.ObserveScheduleExport("xlsx", metrics.ResultError, time.Since(start))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="piano_ammortamento.xlsx"`)
	_, _ = w.Write(data)
	metrics.ObserveScheduleExport("xlsx", metrics.ResultSuccess, time.Since(start))
}

func (h *ScheduleHandler) handleCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, result, ok := h.compute(w, r)
	if !ok {
		metrics.ObserveScheduleExport("csv", metrics.ResultError, time.Since(start))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="piano_ammortamento.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"month", "payment", "interest", "principal", "remaining_balance"})
	for _, row := range result.Rows {
		_ = writer.Write([]string{
			strconv.Itoa(row.Month),
			row.Payment.StringFixed(2),
			row.Interest.StringFixed(2),
			row.Principal.StringFixed(2),
			row.RemainingBalance.StringFixed(2),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Printf("schedule export error: format=csv err=%v", err)
		metrics.ObserveScheduleExport("csv", metrics.ResultError, time.Since(start))
		return
	}
	metrics.ObserveScheduleExport("csv", metrics.ResultSuccess, time.Since(start))
}

func (h *ScheduleHandler) compute(w http.ResponseWriter, r *http.Request) (amortization.LoanTerms, amortization.Result, bool) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return amortization.LoanTerms{}, amortization.Result{}, false
	}
	terms, err := amortization.NewLoanTerms(req.Amount, req.Duration, req.TAN)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return amortization.LoanTerms{}, amortization.Result{}, false
	}
	result, err := amortization.Compute(terms)
	if err != nil {
		h.logger.Printf("schedule compute error: %v", err)
		http.Error(w, "schedule failed", http.StatusInternalServerError)
		return amortization.LoanTerms{}, amortization.Result{}, false
	}
	return terms, result, true
}
