package documents

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	amortization "loan-docs/internal/amortization/domain"
	layout "loan-docs/internal/layout/domain"
)

// Field names a request input.
type Field string

const (
	FieldName     Field = "name"
	FieldAmount   Field = "amount"
	FieldDuration Field = "duration"
	FieldTAN      Field = "tan"
	FieldTAEG     Field = "taeg"
)

var requiredFields = map[layout.Variant][]Field{
	layout.VariantContract:       {FieldName, FieldAmount, FieldDuration, FieldTAN, FieldTAEG},
	layout.VariantGuarantee:      {FieldName},
	layout.VariantCardLetter:     {FieldName, FieldAmount, FieldDuration, FieldTAN},
	layout.VariantApprovalLetter: {FieldName, FieldAmount, FieldTAN},
}

// RequiredFields lists the inputs a variant needs.
func RequiredFields(variant layout.Variant) []Field {
	return append([]Field(nil), requiredFields[variant]...)
}

// Request carries the caller's inputs for one document.
// Payment, when valid, overrides the computed periodic payment in the text.
type Request struct {
	Variant  layout.Variant
	Name     string
	Amount   decimal.NullDecimal
	Duration *int
	TAN      decimal.NullDecimal
	TAEG     decimal.NullDecimal
	Payment  decimal.NullDecimal
}

func (r Request) has(field Field) bool {
	switch field {
	case FieldName:
		return strings.TrimSpace(r.Name) != ""
	case FieldAmount:
		return r.Amount.Valid
	case FieldDuration:
		return r.Duration != nil
	case FieldTAN:
		return r.TAN.Valid
	case FieldTAEG:
		return r.TAEG.Valid
	default:
		return false
	}
}

// Validate checks the variant and its required fields.
func (r Request) Validate() error {
	if _, err := layout.ParseVariant(string(r.Variant)); err != nil {
		return err
	}
	for _, field := range requiredFields[r.Variant] {
		if !r.has(field) {
			return &MissingFieldError{Variant: r.Variant, Field: field}
		}
	}
	if r.Amount.Valid && !r.Amount.Decimal.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidField)
	}
	if r.TAN.Valid && r.TAN.Decimal.IsNegative() {
		return fmt.Errorf("%w: tan must not be negative", ErrInvalidField)
	}
	if r.TAEG.Valid && r.TAEG.Decimal.IsNegative() {
		return fmt.Errorf("%w: taeg must not be negative", ErrInvalidField)
	}
	if r.Payment.Valid && !r.Payment.Decimal.IsPositive() {
		return fmt.Errorf("%w: payment must be positive", ErrInvalidField)
	}
	return nil
}

// NeedsSchedule reports whether the variant prints a payment computed by the
// amortization engine.
func (r Request) NeedsSchedule() bool {
	return r.Variant == layout.VariantContract || r.Variant == layout.VariantCardLetter
}

// LoanTerms builds the engine input from a validated request.
func (r Request) LoanTerms() (amortization.LoanTerms, error) {
	if !r.Amount.Valid || r.Duration == nil || !r.TAN.Valid {
		return amortization.LoanTerms{}, fmt.Errorf("%w: amount, duration and tan are required", amortization.ErrInvalidLoanTerms)
	}
	return amortization.NewLoanTerms(r.Amount.Decimal, *r.Duration, r.TAN.Decimal)
}
