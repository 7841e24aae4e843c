package documents

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	amortization "loan-docs/internal/amortization/domain"
	layout "loan-docs/internal/layout/domain"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func intp(v int) *int { return &v }

func contractRequest() Request {
	return Request{
		Variant:  layout.VariantContract,
		Name:     " Mario Rossi ",
		Amount:   dec("15000"),
		Duration: intp(36),
		TAN:      dec("7.86"),
		TAEG:     dec("8.30"),
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		req   Request
		field Field
	}{
		{Request{Variant: layout.VariantGuarantee}, FieldName},
		{Request{Variant: layout.VariantGuarantee, Name: "   "}, FieldName},
		{Request{Variant: layout.VariantApprovalLetter, Name: "A", Amount: dec("10")}, FieldTAN},
		{Request{Variant: layout.VariantCardLetter, Name: "A", Amount: dec("10"), TAN: dec("1")}, FieldDuration},
		{Request{Variant: layout.VariantContract, Name: "A", Amount: dec("10"), TAN: dec("1"), Duration: intp(2)}, FieldTAEG},
	}
	for _, tc := range cases {
		err := tc.req.Validate()
		var missing *MissingFieldError
		if !errors.As(err, &missing) || !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected missing field, got %v", tc.req.Variant, err)
		}
		if missing.Field != tc.field || missing.Variant != tc.req.Variant {
			t.Fatalf("%s: expected %s, got %+v", tc.req.Variant, tc.field, missing)
		}
	}

	if err := (Request{Variant: layout.VariantGuarantee, Name: "Mario"}).Validate(); err != nil {
		t.Fatalf("guarantee with name: %v", err)
	}
	if err := contractRequest().Validate(); err != nil {
		t.Fatalf("contract: %v", err)
	}
	if err := (Request{Variant: "memo", Name: "x"}).Validate(); !errors.Is(err, layout.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
	bad := contractRequest()
	bad.Amount = dec("-5")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestRequiredFieldsIsACopy(t *testing.T) {
	fields := RequiredFields(layout.VariantGuarantee)
	fields[0] = FieldTAEG
	if RequiredFields(layout.VariantGuarantee)[0] != FieldName {
		t.Fatalf("required fields mutated")
	}
}

func TestBuildContractContent(t *testing.T) {
	req := contractRequest()
	terms, err := req.LoanTerms()
	if err != nil {
		t.Fatalf("terms: %v", err)
	}
	result, err := amortization.Compute(terms)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	content, err := BuildContent(req, &result, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []Substitution{
		{KeyName, "Mario Rossi"},
		{KeyAmount, "15 000.00"},
		{KeyTAN, "7.86%"},
		{KeyTAEG, "8.30%"},
		{KeyDuration, "36 mesi"},
		{KeyPayment, "469.08"},
		{KeyDate, "11/06/2025"},
		{KeyName, "Mario Rossi"},
	}
	if diff := cmp.Diff(want, content.Substitutions); diff != "" {
		t.Fatalf("substitutions (-want +got):\n%s", diff)
	}
	if content.Summary == nil {
		t.Fatalf("missing summary")
	}
	if got := content.Summary.MonthlyRate.StringFixed(10); got != "0.0065500000" {
		t.Fatalf("monthly rate %s", got)
	}
	if got := content.Summary.TotalPayments.StringFixed(2); got != "16886.81" {
		t.Fatalf("total payments %s", got)
	}
	if got := content.Summary.TotalInterest.StringFixed(2); got != "1886.81" {
		t.Fatalf("total interest %s", got)
	}
	if len(content.Rows) != 36 {
		t.Fatalf("rows %d", len(content.Rows))
	}
}

func TestBuildContentPaymentOverride(t *testing.T) {
	req := Request{
		Variant:  layout.VariantCardLetter,
		Name:     "Anna",
		Amount:   dec("1200"),
		Duration: intp(12),
		TAN:      dec("0"),
		Payment:  dec("99.5"),
	}
	result := amortization.Result{PeriodicPayment: decimal.RequireFromString("100")}
	content, err := BuildContent(req, &result, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if content.Substitutions[4] != (Substitution{KeyPayment, "99.50"}) {
		t.Fatalf("unexpected payment substitution %+v", content.Substitutions[4])
	}
	if content.Summary != nil || content.Rows != nil {
		t.Fatalf("card letter should not carry a schedule")
	}
}

func TestBuildContentWithoutSchedule(t *testing.T) {
	content, err := BuildContent(Request{Variant: layout.VariantGuarantee, Name: "Mario"}, nil, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]Substitution{{KeyName, "Mario"}}, content.Substitutions); diff != "" {
		t.Fatalf("substitutions (-want +got):\n%s", diff)
	}
	if _, err := BuildContent(contractRequest(), nil, time.Now()); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestApplySubstitutionsReplacesOnceInOrder(t *testing.T) {
	blocks := []string{
		"Cliente: {name}",
		"Importo {amount} al {tan}",
		"Firma del cliente: {name}",
	}
	subs := []Substitution{
		{KeyName, "Mario"},
		{KeyAmount, "1 000.00"},
		{KeyTAN, "5.00%"},
		{KeyName, "M. Rossi"},
		{KeyDate, "01/01/2025"},
	}
	got, unmatched := ApplySubstitutions(blocks, subs)
	want := []string{
		"Cliente: Mario",
		"Importo 1 000.00 al 5.00%",
		"Firma del cliente: M. Rossi",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blocks (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Substitution{{KeyDate, "01/01/2025"}}, unmatched); diff != "" {
		t.Fatalf("unmatched (-want +got):\n%s", diff)
	}
	if blocks[0] != "Cliente: {name}" {
		t.Fatalf("input mutated")
	}
}
