// Package spreadsheet reads and writes the xlsx workbooks used by the user import.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadFirstSheet returns the cell text of the first worksheet, one slice
// per row. Row 0 is the header. Trailing empty rows are dropped; empty rows
// between data rows are kept as empty slices.
func ReadFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(raw))
	for i, cells := range raw {
		rows[i] = make([]string, len(cells))
		for j, value := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			text, err := cellText(f, sheet, cell, value)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
			rows[i][j] = text
		}
	}
	return rows, nil
}

// cellText renders a cell the way the importer compares values: formulas
// as their source, booleans as true/false, whole numbers without a decimal
// part and date-formatted numbers as their displayed text.
func cellText(f *excelize.File, sheet, cell, raw string) (string, error) {
	formula, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		return "", err
	}
	if formula != "" {
		return formula, nil
	}

	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return "", err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return strconv.FormatBool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return raw, nil
	case excelize.CellTypeDate:
		return f.GetCellValue(sheet, cell)
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	dated, err := isDateStyled(f, sheet, cell)
	if err != nil {
		return "", err
	}
	if dated {
		return f.GetCellValue(sheet, cell)
	}
	if number == math.Trunc(number) && math.Abs(number) < 1<<53 {
		return strconv.FormatInt(int64(number), 10), nil
	}
	return strconv.FormatFloat(number, 'f', -1, 64), nil
}

func isDateStyled(f *excelize.File, sheet, cell string) (bool, error) {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false, err
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt), nil
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22,
		style.NumFmt >= 45 && style.NumFmt <= 47:
		return true, nil
	}
	return false, nil
}

// isDateFormatCode reports whether a custom number format renders dates or
// times, ignoring quoted literals and bracketed sections such as colors.
func isDateFormatCode(code string) bool {
	var (
		quoted    bool
		bracketed bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracketed = true
		case r == ']':
			bracketed = false
		case bracketed:
		case strings.ContainsRune("ydmhs", r):
			return true
		}
	}
	return false
}
