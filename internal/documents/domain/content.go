package documents

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	amortization "loan-docs/internal/amortization/domain"
	"loan-docs/internal/format"
	layout "loan-docs/internal/layout/domain"
)

// Placeholder keys understood by document templates, written as "{key}".
const (
	KeyName     = "name"
	KeyAmount   = "amount"
	KeyTAN      = "tan"
	KeyTAEG     = "taeg"
	KeyDuration = "duration"
	KeyPayment  = "payment"
	KeyDate     = "date"
)

// Substitution replaces the first remaining "{Key}" placeholder with Value.
type Substitution struct {
	Key   string
	Value string
}

// Placeholder returns the template token for the key.
func (s Substitution) Placeholder() string { return "{" + s.Key + "}" }

// ScheduleSummary is printed above the contract's repayment table.
type ScheduleSummary struct {
	MonthlyRate   decimal.Decimal
	Payment       decimal.Decimal
	TotalPayments decimal.Decimal
	TotalInterest decimal.Decimal
}

// Content is everything the renderer needs for one document. Schedule rows
// stay structured so the renderer decides their presentation.
type Content struct {
	Variant       layout.Variant
	Substitutions []Substitution
	Summary       *ScheduleSummary
	Rows          []amortization.Row
}

// BuildContent assembles ordered substitutions and, for the contract, the
// schedule section. result is ignored for variants without a schedule.
func BuildContent(req Request, result *amortization.Result, now time.Time) (Content, error) {
	content := Content{Variant: req.Variant}

	payment := decimal.Zero
	if req.Payment.Valid {
		payment = req.Payment.Decimal
	} else if result != nil {
		payment = result.PeriodicPayment
	}
	if req.NeedsSchedule() && result == nil {
		return Content{}, fmt.Errorf("%w: %s needs a schedule", ErrInvalidField, req.Variant)
	}

	name := strings.TrimSpace(req.Name)
	switch req.Variant {
	case layout.VariantContract:
		content.Substitutions = []Substitution{
			{KeyName, name},
			{KeyAmount, format.Money(req.Amount.Decimal)},
			{KeyTAN, format.Rate(req.TAN.Decimal)},
			{KeyTAEG, format.Rate(req.TAEG.Decimal)},
			{KeyDuration, durationText(*req.Duration)},
			{KeyPayment, format.Money(payment)},
			{KeyDate, format.Date(now)},
			{KeyName, name},
		}
		total := result.TotalPaid()
		content.Summary = &ScheduleSummary{
			MonthlyRate:   req.TAN.Decimal.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12)),
			Payment:       payment,
			TotalPayments: total,
			TotalInterest: total.Sub(req.Amount.Decimal),
		}
		content.Rows = result.Rows
	case layout.VariantCardLetter:
		content.Substitutions = []Substitution{
			{KeyName, name},
			{KeyAmount, format.Money(req.Amount.Decimal)},
			{KeyTAN, format.Rate(req.TAN.Decimal)},
			{KeyDuration, durationText(*req.Duration)},
			{KeyPayment, format.Money(payment)},
		}
	case layout.VariantGuarantee:
		content.Substitutions = []Substitution{{KeyName, name}}
	case layout.VariantApprovalLetter:
		content.Substitutions = []Substitution{
			{KeyName, name},
			{KeyAmount, format.Money(req.Amount.Decimal)},
			{KeyTAN, format.Rate(req.TAN.Decimal)},
		}
	default:
		return Content{}, fmt.Errorf("%w: %q", layout.ErrUnknownVariant, req.Variant)
	}
	return content, nil
}

func durationText(months int) string {
	return strconv.Itoa(months) + " mesi"
}

// ApplySubstitutions fills placeholders across blocks in order. Each
// substitution replaces only the first occurrence still present, scanning the
// blocks front to back, so repeated keys fill successive slots. Unmatched
// substitutions are returned.
func ApplySubstitutions(blocks []string, subs []Substitution) ([]string, []Substitution) {
	out := append([]string(nil), blocks...)
	var unmatched []Substitution
	for _, sub := range subs {
		token := sub.Placeholder()
		applied := false
		for i, block := range out {
			if strings.Contains(block, token) {
				out[i] = strings.Replace(block, token, sub.Value, 1)
				applied = true
				break
			}
		}
		if !applied {
			unmatched = append(unmatched, sub)
		}
	}
	return out, unmatched
}
