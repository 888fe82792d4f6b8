package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

// extractTabular renders spreadsheets as markdown so the summary model sees
// structure instead of raw cells. No external service is involved.
func (e *extractor) extractTabular(file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	record.ExtractionMethod = "direct"

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Path), "."))
	if ext == "csv" {
		return e.extractCSV(file, record)
	}
	return e.extractExcel(file, record)
}

func (e *extractor) extractCSV(file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("csv file is empty")
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	record.Metadata.Rows = len(rows)
	record.Metadata.Columns = cols

	name := strings.TrimSuffix(file.OriginalFilename, filepath.Ext(file.OriginalFilename))
	return fmt.Sprintf("# CSV Data: %s\n\n**Rows:** %d\n**Columns:** %d\n\n## Data\n\n%s",
		name, len(rows), cols, markdownTable(rows)), nil
}

func (e *extractor) extractExcel(file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	wb, err := excelize.OpenFile(file.Path)
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	record.Metadata.SheetCount = len(sheets)

	name := strings.TrimSuffix(file.OriginalFilename, filepath.Ext(file.OriginalFilename))
	var b strings.Builder
	fmt.Fprintf(&b, "# Excel Data: %s\n\n**Sheets:** %d\n\n", name, len(sheets))

	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			log.Warn("skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}
		cols := 0
		for _, row := range rows {
			if len(row) > cols {
				cols = len(row)
			}
		}
		record.Metadata.Rows += len(rows)
		if cols > record.Metadata.Columns {
			record.Metadata.Columns = cols
		}

		fmt.Fprintf(&b, "## Sheet: %s\n\n**Rows:** %d | **Columns:** %d\n\n", sheet, len(rows), cols)
		if len(rows) > 0 {
			b.WriteString(markdownTable(rows))
		}
		b.WriteString("\n\n---\n\n")
	}
	return b.String(), nil
}

// markdownTable renders rows as a pipe table, first row as header. Ragged
// rows are padded; pipes in cells are escaped.
func markdownTable(rows [][]string) string {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.ReplaceAll(strings.TrimSpace(row[i]), "|", "\\|")
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < cols; i++ {
			b.WriteString(" " + cell(row, i) + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return b.String()
}
