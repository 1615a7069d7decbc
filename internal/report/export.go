// Package report renders disclosure summaries into downloadable documents:
// a two-column (label, value) XLSX sheet and a PDF rendition.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"carbonsense.dev/carbonsense/internal/esg"
)

const disclosureSheet = "disclosures"

// Filename names an export artifact after its reporting period, e.g.
// "BRSR_Report_Q1-2024.xlsx".
func Filename(period, format string) string {
	return fmt.Sprintf("BRSR_Report_%s.%s", period, format)
}

type disclosureRow struct {
	label string
	value string
}

// disclosureRows flattens the report into the label/value contract shared by
// both export formats. Undefined intensities render as "n/a".
func disclosureRows(rep esg.DisclosureReport) []disclosureRow {
	intensity := "n/a"
	if rep.IntensityDefined {
		intensity = fmt.Sprintf("%.2f", rep.EmissionIntensityKgPerMWh)
	}
	return []disclosureRow{
		{"Reporting_Period", rep.Period},
		{"Scope1_Emissions_Total_tCO2e", fmt.Sprintf("%.2f", rep.Scope1TotalTonnes)},
		{"Energy_Generation_Total_MWh", fmt.Sprintf("%.2f", rep.GenerationTotalMWh)},
		{"Emission_Intensity_kgCO2_per_MWh", intensity},
		{"Water_Withdrawal_Total_m3", fmt.Sprintf("%.2f", rep.WaterWithdrawalTotalCuM)},
		{"Water_Intensity_m3_per_MWh", fmt.Sprintf("%.3f", rep.MeanWaterIntensity)},
		{"Renewable_Energy_Percentage", fmt.Sprintf("%.2f", rep.RenewablePct)},
		{"Data_Quality_Score", fmt.Sprintf("%.2f", rep.DataQualityScore)},
	}
}

// BuildDisclosureXLSX renders the disclosure summary as a single-sheet
// spreadsheet with labels in column A and values in column B.
func BuildDisclosureXLSX(rep esg.DisclosureReport) ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", disclosureSheet)

	for i, row := range disclosureRows(rep) {
		n := i + 1
		_ = f.SetCellValue(disclosureSheet, fmt.Sprintf("A%d", n), row.label)
		_ = f.SetCellValue(disclosureSheet, fmt.Sprintf("B%d", n), row.value)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDisclosurePDF renders the disclosure summary as a minimal PDF.
func BuildDisclosurePDF(rep esg.DisclosureReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "BRSR Core Disclosures")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, row := range disclosureRows(rep) {
		pdf.CellFormat(90, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, row.value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
