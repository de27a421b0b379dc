// Package export writes tree lists to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/models"
)

// DefaultSheet names the worksheet when the caller gives none.
const DefaultSheet = "Trees"

// Columns is the header row: the server id followed by every form field.
var Columns = append([]string{"id"}, models.FieldNames...)

// WriteXLSX writes one header row and one row per tree to w. Absent values are left
// blank; coordinates and diameters are stored as numbers.
func WriteXLSX(w io.Writer, sheet string, trees []models.Tree) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, t := range trees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := treeRow(t)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func treeRow(t models.Tree) []any {
	return []any{
		t.ID,
		t.CustomID,
		t.City,
		t.Address,
		number(t.Latitude),
		number(t.Longitude),
		t.Species,
		t.Condition,
		t.Comments,
		t.Actions,
		t.Height,
		number(t.TrunkDiameterCM),
		number(t.CrownDiameterM),
		t.Age,
		t.Location,
		t.CPC,
		text(t.NextCheck),
	}
}

func number(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func text(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}
