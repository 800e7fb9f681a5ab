package report

import (
	"fmt"

	"bpdash/pkg/chart"
	"bpdash/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet   = "Holdings"
	allocationSheet = "Allocation"
)

// WriteXLSX writes a workbook with the holdings and the allocation of each
// view mode.
func WriteXLSX(path string, snap *models.PortfolioSnapshot, projector *chart.Projector) error {
	if snap == nil {
		return fmt.Errorf("no snapshot to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", holdingsSheet); err != nil {
		return err
	}
	if err := writeHoldings(f, snap); err != nil {
		return fmt.Errorf("writing holdings: %w", err)
	}

	if _, err := f.NewSheet(allocationSheet); err != nil {
		return err
	}
	if err := writeAllocation(f, snap, projector); err != nil {
		return fmt.Errorf("writing allocation: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeHoldings(f *excelize.File, snap *models.PortfolioSnapshot) error {
	ref := snap.ReferenceCurrency
	rows := [][]any{
		{"Type", "Symbol", "Name", "Amount", "Unit price (" + ref + ")", "Value (" + ref + ")"},
	}
	for _, h := range snap.CryptoHoldings {
		rows = append(rows, []any{
			"crypto", h.Symbol, h.DisplayName,
			h.AmountHeld.InexactFloat64(), h.UnitPrice.InexactFloat64(), h.Value.InexactFloat64(),
		})
	}
	for _, h := range snap.FiatHoldings {
		rows = append(rows, []any{"fiat", h.Symbol, h.DisplayName, h.Balance.InexactFloat64(), nil, nil})
	}
	rows = append(rows, []any{"total", "", "", nil, nil, snap.TotalValue.InexactFloat64()})
	return setRows(f, holdingsSheet, rows)
}

func writeAllocation(f *excelize.File, snap *models.PortfolioSnapshot, projector *chart.Projector) error {
	rows := [][]any{{"Mode", "Asset", "Value (" + snap.ReferenceCurrency + ")", "Share %"}}
	for _, mode := range []chart.ViewMode{chart.ModeTotal, chart.ModeCryptoOnly, chart.ModeFiatOnly} {
		series := projector.Project(snap, mode)
		for i, sl := range series.Slices {
			var share any
			if pct, err := series.Percent(i); err == nil {
				share = pct.Round(2).InexactFloat64()
			}
			rows = append(rows, []any{mode.String(), sl.Label, sl.Value.InexactFloat64(), share})
		}
	}
	return setRows(f, allocationSheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
