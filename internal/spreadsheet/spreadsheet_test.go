package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, build func(f *excelize.File, sheet string)) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f, f.GetSheetName(0))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadFirstSheetRendersCellTypes(t *testing.T) {
	r := workbook(t, func(f *excelize.File, sheet string) {
		require.NoError(t, f.SetCellValue(sheet, "A1", "Email"))
		require.NoError(t, f.SetCellValue(sheet, "A2", "a@fpt.edu.vn"))
		require.NoError(t, f.SetCellFormula(sheet, "B2", "CONCAT(\"SE\",C2)"))
		require.NoError(t, f.SetCellValue(sheet, "C2", 12345))
		require.NoError(t, f.SetCellValue(sheet, "D2", 2.5))
		require.NoError(t, f.SetCellValue(sheet, "E2", true))
	})

	rows, err := ReadFirstSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Email"}, rows[0])
	assert.Equal(t, []string{"a@fpt.edu.vn", "CONCAT(\"SE\",C2)", "12345", "2.5", "true"}, rows[1])
}

func TestReadFirstSheetRendersDateStyledNumbers(t *testing.T) {
	isoDate := "yyyy-mm-dd"
	r := workbook(t, func(f *excelize.File, sheet string) {
		custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &isoDate})
		require.NoError(t, err)
		builtin, err := f.NewStyle(&excelize.Style{NumFmt: 14})
		require.NoError(t, err)

		require.NoError(t, f.SetCellValue(sheet, "A1", "Joined"))
		// 45292 is the serial for 2024-01-01.
		require.NoError(t, f.SetCellValue(sheet, "A2", 45292))
		require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", custom))
		require.NoError(t, f.SetCellValue(sheet, "B2", 45292))
		require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", builtin))
		require.NoError(t, f.SetCellValue(sheet, "C2", 45292))
	})

	rows, err := ReadFirstSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-01", "01-01-24", "45292"}, rows[1])
}

func TestReadFirstSheetKeepsInteriorBlankRows(t *testing.T) {
	r := workbook(t, func(f *excelize.File, sheet string) {
		require.NoError(t, f.SetCellValue(sheet, "A1", "Email"))
		require.NoError(t, f.SetCellValue(sheet, "A3", "b@fpt.edu.vn"))
	})

	rows, err := ReadFirstSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Empty(t, rows[1])
	assert.Equal(t, "b@fpt.edu.vn", rows[2][0])
}

func TestReadFirstSheetRejectsGarbage(t *testing.T) {
	_, err := ReadFirstSheet(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("dd/mm/yyyy"))
	assert.True(t, isDateFormatCode("[$-409]h:mm AM/PM"))
	assert.False(t, isDateFormatCode("0.00"))
	assert.False(t, isDateFormatCode(`"day "0`))
	assert.False(t, isDateFormatCode("[Red]0.00"))
}

func TestBuildTemplate(t *testing.T) {
	data, err := BuildTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Users"}, f.GetSheetList())

	rows, err := ReadFirstSheet(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, TemplateHeaders, rows[0])
	assert.Equal(t, "student1@fpt.edu.vn", rows[1][0])
	assert.Equal(t, "12345", rows[1][1])
	assert.Equal(t, "Lê Văn C", rows[3][2])
	assert.Equal(t, "IT Department", rows[3][7])
	assert.Equal(t, "ADMIN", rows[4][3])
}
