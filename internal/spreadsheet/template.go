package spreadsheet

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Users"

// TemplateHeaders lists the import columns in template order.
var TemplateHeaders = []string{
	"Email", "Password", "Full Name", "Role",
	"Student Code", "Class Name", "Position", "Department Name",
}

var templateSamples = [][]string{
	{"student1@fpt.edu.vn", "12345", "Nguyễn Văn A", "STUDENT", "SE12345", "SE1701", "", ""},
	{"student2@fpt.edu.vn", "12345", "Trần Thị B", "STUDENT", "SE12346", "SE1702", "", ""},
	{"staff1@fpt.edu.vn", "12345", "Lê Văn C", "STAFF", "", "", "IT Support", "IT Department"},
	{"admin1@fpt.edu.vn", "12345", "Phạm Thị D", "ADMIN", "", "", "", ""},
}

// BuildTemplate renders the downloadable import template: a bold header
// row and four sample rows formatted as text.
func BuildTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC000"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	// Number format 49 is "@": keeps codes such as 12345 as text and stops
	// Excel from turning emails into hyperlinks.
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, 1, TemplateHeaders, headerStyle); err != nil {
		return nil, err
	}
	for i, sample := range templateSamples {
		if err := writeRow(f, i+2, sample, textStyle); err != nil {
			return nil, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(TemplateHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(templateSheet, "A", lastCol, 22); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []string, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(templateSheet, first, &cells); err != nil {
		return err
	}
	return f.SetCellStyle(templateSheet, first, last, style)
}
