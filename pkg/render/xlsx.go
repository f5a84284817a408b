package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
)

const maxSheetName = 31

// XLSX writes a workbook with one sheet per reconstructed table. The table
// title goes in A1, the header row below it in bold. Failed sections are
// listed on an "Errors" sheet.
func XLSX(w io.Writer, results []engine.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	used := map[string]bool{}
	first := true
	var failed []engine.Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}

		sheet := uniqueSheetName(label(r), used)
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("xlsx sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx sheet: %w", err)
		}

		if err := f.SetCellValue(sheet, "A1", r.Table.Title); err != nil {
			return err
		}
		for i, record := range r.Table.Records() {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			row := record
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("xlsx row: %w", err)
			}
		}
		if n := r.Table.NumCols(); n > 0 {
			last, _ := excelize.CoordinatesToCellName(n, 2)
			if err := f.SetCellStyle(sheet, "A2", last, bold); err != nil {
				return err
			}
			lastCol, _ := excelize.ColumnNumberToName(n)
			_ = f.SetColWidth(sheet, "A", lastCol, 18)
		}
	}

	if len(failed) > 0 {
		if err := writeErrorSheet(f, failed, first, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeErrorSheet(f *excelize.File, failed []engine.Result, reuseDefault bool, style int) error {
	const sheet = "Errors"
	if reuseDefault {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []string{"Section", "Start page", "End page", "Error"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", style); err != nil {
		return err
	}
	for i, r := range failed {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{r.Section.Index, r.Section.StartPage, r.Section.EndPage, r.Err.Error()}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "D", "D", 60)
	return nil
}

// uniqueSheetName makes a valid sheet name from a table title
func uniqueSheetName(title string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Table"
	}
	name = truncateRunes(name, maxSheetName)

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
