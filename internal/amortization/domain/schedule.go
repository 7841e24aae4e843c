package amortization

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MaxTermMonths bounds the schedule length (50 years).
	MaxTermMonths = 600

	currencyPlaces = 2
	powerPlaces    = 28
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

// LoanTerms is the immutable input of the schedule engine.
type LoanTerms struct {
	Principal         decimal.Decimal
	TermMonths        int
	AnnualRatePercent decimal.Decimal
}

// NewLoanTerms validates and builds loan terms.
func NewLoanTerms(principal decimal.Decimal, termMonths int, annualRatePercent decimal.Decimal) (LoanTerms, error) {
	terms := LoanTerms{
		Principal:         principal,
		TermMonths:        termMonths,
		AnnualRatePercent: annualRatePercent,
	}
	if err := terms.Validate(); err != nil {
		return LoanTerms{}, err
	}
	return terms, nil
}

// Validate rejects non-positive principal or term and negative rates.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidLoanTerms, t.Principal)
	}
	if t.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidLoanTerms, t.TermMonths)
	}
	if t.TermMonths > MaxTermMonths {
		return fmt.Errorf("%w: term exceeds %d months", ErrInvalidLoanTerms, MaxTermMonths)
	}
	if t.AnnualRatePercent.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative, got %s", ErrInvalidLoanTerms, t.AnnualRatePercent)
	}
	return nil
}

// MonthlyRate returns annual_rate_percent / 100 / 12.
func (t LoanTerms) MonthlyRate() decimal.Decimal {
	return t.AnnualRatePercent.Div(hundred).Div(twelve)
}

// Row is one month of the repayment plan.
type Row struct {
	Month            int             `json:"month"`
	Payment          decimal.Decimal `json:"payment"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Result is a computed schedule. It is derived per request and never stored.
type Result struct {
	PeriodicPayment decimal.Decimal `json:"periodic_payment"`
	Rows            []Row           `json:"rows"`
	TotalInterest   decimal.Decimal `json:"total_interest"`
}

// TotalPaid sums the payment column, including the corrected final row.
func (r Result) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.Payment)
	}
	return total
}

// PeriodicPayment returns the annuity payment rounded to cents.
func PeriodicPayment(terms LoanTerms) (decimal.Decimal, error) {
	if err := terms.Validate(); err != nil {
		return decimal.Zero, err
	}
	return periodicPayment(terms.Principal, terms.TermMonths, terms.MonthlyRate()), nil
}

func periodicPayment(principal decimal.Decimal, months int, r decimal.Decimal) decimal.Decimal {
	n := decimal.NewFromInt(int64(months))
	if r.IsZero() {
		return principal.Div(n).Round(currencyPlaces)
	}
	factor := compound(one.Add(r), months)
	return principal.Mul(r).Mul(factor).Div(factor.Sub(one)).Round(currencyPlaces)
}

// Compute builds the full schedule. Every intermediate amount is rounded half-up
// to cents; the final month absorbs the remaining balance so the plan closes at zero.
func Compute(terms LoanTerms) (Result, error) {
	if err := terms.Validate(); err != nil {
		return Result{}, err
	}

	r := terms.MonthlyRate()
	payment := periodicPayment(terms.Principal, terms.TermMonths, r)

	rows := make([]Row, 0, terms.TermMonths)
	balance := terms.Principal
	totalInterest := decimal.Zero

	for month := 1; month <= terms.TermMonths; month++ {
		interest := balance.Mul(r).Round(currencyPlaces)
		rowPayment := payment
		principal := payment.Sub(interest).Round(currencyPlaces)
		if month == terms.TermMonths {
			principal = balance
			rowPayment = principal.Add(interest)
		}

		balance = balance.Sub(principal).Round(currencyPlaces)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		totalInterest = totalInterest.Add(interest)

		rows = append(rows, Row{
			Month:            month,
			Payment:          rowPayment,
			Interest:         interest,
			Principal:        principal,
			RemainingBalance: balance,
		})
	}

	if !balance.IsZero() {
		return Result{}, fmt.Errorf("%w: closing balance %s", ErrRoundingInconsistency, balance)
	}

	return Result{
		PeriodicPayment: payment,
		Rows:            rows,
		TotalInterest:   totalInterest,
	}, nil
}

// compound returns base^n by repeated squaring, keeping powerPlaces decimals.
func compound(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powerPlaces)
		}
		base = base.Mul(base).Round(powerPlaces)
		n >>= 1
	}
	return result
}
