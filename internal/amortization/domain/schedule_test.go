package amortization

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCompute(t *testing.T, principal string, months int, rate string) Result {
	t.Helper()
	terms, err := NewLoanTerms(dec(principal), months, dec(rate))
	if err != nil {
		t.Fatalf("new loan terms: %v", err)
	}
	result, err := Compute(terms)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return result
}

func TestComputeReferenceContract(t *testing.T) {
	result := mustCompute(t, "15000.00", 36, "7.86")

	if !result.PeriodicPayment.Equal(dec("469.08")) {
		t.Fatalf("expected payment 469.08, got %s", result.PeriodicPayment)
	}
	if len(result.Rows) != 36 {
		t.Fatalf("expected 36 rows, got %d", len(result.Rows))
	}
	first := result.Rows[0]
	if !first.Interest.Equal(dec("98.25")) {
		t.Fatalf("expected first interest 98.25, got %s", first.Interest)
	}
	if !first.Principal.Equal(dec("370.83")) {
		t.Fatalf("expected first principal 370.83, got %s", first.Principal)
	}
	if !first.RemainingBalance.Equal(dec("14629.17")) {
		t.Fatalf("expected first balance 14629.17, got %s", first.RemainingBalance)
	}
	last := result.Rows[35]
	if last.Month != 36 {
		t.Fatalf("expected last month 36, got %d", last.Month)
	}
	if !last.RemainingBalance.IsZero() {
		t.Fatalf("expected closing balance 0, got %s", last.RemainingBalance)
	}
	if !last.Payment.Equal(dec("469.01")) || !last.Interest.Equal(dec("3.05")) || !last.Principal.Equal(dec("465.96")) {
		t.Fatalf("unexpected final row %+v", last)
	}
	if !result.TotalInterest.Equal(dec("1886.81")) {
		t.Fatalf("expected total interest 1886.81, got %s", result.TotalInterest)
	}
	if !result.TotalPaid().Equal(dec("16886.81")) {
		t.Fatalf("expected total paid 16886.81, got %s", result.TotalPaid())
	}
}

func TestComputeZeroRate(t *testing.T) {
	result := mustCompute(t, "1200.00", 12, "0")

	for _, row := range result.Rows {
		if !row.Interest.IsZero() {
			t.Fatalf("month %d: expected zero interest, got %s", row.Month, row.Interest)
		}
		if !row.Payment.Equal(dec("100")) {
			t.Fatalf("month %d: expected payment 100.00, got %s", row.Month, row.Payment)
		}
	}
	if !result.TotalPaid().Equal(dec("1200")) {
		t.Fatalf("expected total paid 1200.00, got %s", result.TotalPaid())
	}
}

func TestComputeZeroRateRemainderInFinalRow(t *testing.T) {
	result := mustCompute(t, "1000", 7, "0")

	for _, row := range result.Rows[:6] {
		if !row.Principal.Equal(dec("142.86")) {
			t.Fatalf("month %d: expected constant principal 142.86, got %s", row.Month, row.Principal)
		}
	}
	last := result.Rows[6]
	if !last.Principal.Equal(dec("142.84")) || !last.Payment.Equal(dec("142.84")) {
		t.Fatalf("expected final row to absorb remainder, got %+v", last)
	}
}

func TestComputeSingleMonth(t *testing.T) {
	result := mustCompute(t, "500", 1, "5")

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if !row.Principal.Equal(dec("500")) {
		t.Fatalf("expected whole principal in single row, got %s", row.Principal)
	}
	if !row.Interest.Equal(dec("2.08")) || !row.Payment.Equal(dec("502.08")) {
		t.Fatalf("unexpected single row %+v", row)
	}
}

func TestComputeInvariants(t *testing.T) {
	cases := []struct {
		principal string
		months    int
		rate      string
	}{
		{"15000", 36, "7.86"},
		{"10000", 24, "12"},
		{"100000", 360, "5"},
		{"999.99", 13, "19.99"},
		{"0.05", 3, "0"},
		{"250000", 600, "3.25"},
	}
	for _, tc := range cases {
		result := mustCompute(t, tc.principal, tc.months, tc.rate)

		principalSum := decimal.Zero
		interestSum := decimal.Zero
		previous := dec(tc.principal)
		for i, row := range result.Rows {
			if row.Month != i+1 {
				t.Fatalf("%v: row %d has month %d", tc, i, row.Month)
			}
			if row.RemainingBalance.GreaterThan(previous) {
				t.Fatalf("%v: balance increased at month %d", tc, row.Month)
			}
			if row.RemainingBalance.IsNegative() {
				t.Fatalf("%v: negative balance at month %d", tc, row.Month)
			}
			if !row.Payment.Equal(row.Interest.Add(row.Principal)) {
				t.Fatalf("%v: payment != interest + principal at month %d", tc, row.Month)
			}
			previous = row.RemainingBalance
			principalSum = principalSum.Add(row.Principal)
			interestSum = interestSum.Add(row.Interest)
		}
		if !principalSum.Equal(dec(tc.principal)) {
			t.Fatalf("%v: principal sum %s", tc, principalSum)
		}
		if !interestSum.Equal(result.TotalInterest) {
			t.Fatalf("%v: total interest %s, rows sum to %s", tc, result.TotalInterest, interestSum)
		}
		if !result.Rows[len(result.Rows)-1].RemainingBalance.IsZero() {
			t.Fatalf("%v: schedule does not close", tc)
		}
	}
}

func TestComputeLongMortgagePayment(t *testing.T) {
	result := mustCompute(t, "100000", 360, "5")
	if !result.PeriodicPayment.Equal(dec("536.82")) {
		t.Fatalf("expected payment 536.82, got %s", result.PeriodicPayment)
	}
	if !result.Rows[0].Interest.Equal(dec("416.67")) {
		t.Fatalf("expected first interest 416.67, got %s", result.Rows[0].Interest)
	}
}

func TestComputeRejectsInvalidTerms(t *testing.T) {
	cases := []LoanTerms{
		{Principal: dec("0"), TermMonths: 12, AnnualRatePercent: dec("5")},
		{Principal: dec("-100"), TermMonths: 12, AnnualRatePercent: dec("5")},
		{Principal: dec("100"), TermMonths: 0, AnnualRatePercent: dec("5")},
		{Principal: dec("100"), TermMonths: -3, AnnualRatePercent: dec("5")},
		{Principal: dec("100"), TermMonths: 12, AnnualRatePercent: dec("-0.01")},
		{Principal: dec("100"), TermMonths: MaxTermMonths + 1, AnnualRatePercent: dec("5")},
	}
	for _, terms := range cases {
		if _, err := Compute(terms); !errors.Is(err, ErrInvalidLoanTerms) {
			t.Fatalf("%+v: expected ErrInvalidLoanTerms, got %v", terms, err)
		}
	}
	if _, err := NewLoanTerms(dec("0"), 1, dec("0")); !errors.Is(err, ErrInvalidLoanTerms) {
		t.Fatalf("expected constructor to reject zero principal, got %v", err)
	}
}

func TestPeriodicPayment(t *testing.T) {
	terms := LoanTerms{Principal: dec("10000"), TermMonths: 24, AnnualRatePercent: dec("12")}
	payment, err := PeriodicPayment(terms)
	if err != nil {
		t.Fatalf("periodic payment: %v", err)
	}
	if !payment.Equal(dec("470.73")) {
		t.Fatalf("expected 470.73, got %s", payment)
	}
}
