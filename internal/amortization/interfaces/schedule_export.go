package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	amortization "loan-docs/internal/amortization/domain"
	"loan-docs/internal/format"
)

const (
	summarySheet = "riepilogo"
	rowsSheet    = "piano"

	// built-in "#,##0.00"
	amountNumFmt = 4
)

var rowsHeader = []any{"Mese", "Pagamento", "Interessi", "Importo del prestito", "Saldo residuo"}

// BuildScheduleXLSX renders a repayment plan as a two-sheet workbook.
func BuildScheduleXLSX(terms amortization.LoanTerms, result amortization.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return nil, err
	}

	totalPaid := result.TotalPaid()
	summary := [][]any{
		{"Piano di ammortamento"},
		{},
		{"Importo del credito", terms.Principal.InexactFloat64()},
		{"Durata (mesi)", terms.TermMonths},
		{"TAN", format.Rate(terms.AnnualRatePercent)},
		{"Tasso mensile", format.MonthlyRate(terms.MonthlyRate())},
		{"Rata mensile", result.PeriodicPayment.InexactFloat64()},
		{"Importo totale pagamenti", totalPaid.InexactFloat64()},
		{"Importo interessi totali", totalPaid.Sub(terms.Principal).InexactFloat64()},
	}
	for i, values := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return nil, err
		}
	}
	for _, cell := range []string{"B3", "B7", "B8", "B9"} {
		if err := f.SetCellStyle(summarySheet, cell, cell, amountStyle); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)

	if err := f.SetSheetRow(rowsSheet, "A1", &rowsHeader); err != nil {
		return nil, err
	}
	for i, row := range result.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.Month,
			row.Payment.InexactFloat64(),
			row.Interest.InexactFloat64(),
			row.Principal.InexactFloat64(),
			row.RemainingBalance.InexactFloat64(),
		}
		if err := f.SetSheetRow(rowsSheet, cell, &values); err != nil {
			return nil, err
		}
	}
	if len(result.Rows) > 0 {
		last := fmt.Sprintf("E%d", len(result.Rows)+1)
		if err := f.SetCellStyle(rowsSheet, "B2", last, amountStyle); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(rowsSheet, "A", "A", 8)
	_ = f.SetColWidth(rowsSheet, "B", "E", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
