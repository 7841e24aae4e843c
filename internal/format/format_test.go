package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"469.08", "469.08"},
		{"999.999", "1 000.00"},
		{"15000", "15 000.00"},
		{"1234567.891", "1 234 567.89"},
		{"100000", "100 000.00"},
		{"-2500.5", "-2 500.50"},
	}
	for _, tc := range cases {
		got := Money(decimal.RequireFromString(tc.in))
		if got != tc.want {
			t.Fatalf("Money(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(decimal.RequireFromString("7.86")); got != "7.86%" {
		t.Fatalf("unexpected rate %q", got)
	}
	if got := Rate(decimal.NewFromInt(0)); got != "0.00%" {
		t.Fatalf("unexpected zero rate %q", got)
	}
}

func TestMonthlyRate(t *testing.T) {
	got := MonthlyRate(decimal.RequireFromString("0.00655"))
	if got != "0.0065500000" {
		t.Fatalf("unexpected monthly rate %q", got)
	}
}

func TestDate(t *testing.T) {
	got := Date(time.Date(2025, 6, 11, 15, 4, 0, 0, time.UTC))
	if got != "11/06/2025" {
		t.Fatalf("unexpected date %q", got)
	}
}
