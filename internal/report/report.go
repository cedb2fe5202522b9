// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders an aggregate annotation result as an Excel
// workbook, JSON, YAML, or a human-readable table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

const (
	geneSheet       = "Gene Information"
	literatureSheet = "Literature"
)

// Write renders result to path in the given format, creating parent
// directories as needed. A table format writes to stdout-style text.
func Write(result types.AggregateResult, path string, format types.ReportFormat) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	switch format {
	case types.FormatExcel:
		return WriteExcel(result, f)
	case types.FormatJSON:
		return WriteJSON(result, f)
	case types.FormatYAML:
		return WriteYAML(result, f)
	case types.FormatTable:
		FormatTable(result, f)
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

var geneHeader = []string{
	"Gene", "Description", "Chromosome", "Location",
	"Gene ID", "Protein Name", "Function", "Source", "Retrieved",
}

var literatureHeader = []string{
	"Gene", "PMID", "Title", "First Author", "Authors",
	"Journal", "Publication Date", "Abstract", "Keywords", "DOI", "Source",
}

// WriteExcel writes a two-sheet workbook: gene records on the first
// sheet, literature rows on the second.
func WriteExcel(result types.AggregateResult, w io.Writer) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", geneSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := wb.NewSheet(literatureSheet); err != nil {
		return fmt.Errorf("creating literature sheet: %w", err)
	}

	if err := writeSheet(wb, geneSheet, geneHeader, len(result.GeneInfo), func(i int) []any {
		r := result.GeneInfo[i]
		return []any{r.Gene, r.Description, r.Chromosome, r.Location,
			r.GeneID, r.ProteinName, r.Function, r.Source,
			r.Retrieved.Format("2006-01-02 15:04:05")}
	}); err != nil {
		return err
	}

	if err := writeSheet(wb, literatureSheet, literatureHeader, len(result.Literature), func(i int) []any {
		r := result.Literature[i]
		return []any{r.Gene, r.PMID, r.Title, r.FirstAuthor, r.Authors,
			r.Journal, r.PubDate, r.Abstract, r.Keywords, r.DOI, r.Source}
	}); err != nil {
		return err
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(wb *excelize.File, sheet string, header []string, rows int, row func(int) []any) error {
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := wb.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i := 0; i < rows; i++ {
		for col, value := range row(i) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("computing cell name: %w", err)
			}
			if err := wb.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing row %d: %w", i+2, err)
			}
		}
	}
	return nil
}

// WriteJSON writes result as indented JSON to w.
func WriteJSON(result types.AggregateResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteYAML writes result as YAML to w.
func WriteYAML(result types.AggregateResult, w io.Writer) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// FormatTable writes gene records as a human-readable table to w.
// Literature rows are summarized per gene rather than listed in full.
func FormatTable(result types.AggregateResult, w io.Writer) {
	if len(result.GeneInfo) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	litCount := make(map[string]int)
	for _, lit := range result.Literature {
		litCount[lit.Gene]++
	}

	fmt.Fprintf(w, "%-12s  %-40s  %-5s  %-22s  %-13s  %s\n",
		"Gene", "Description", "Chr", "Location", "Source", "Papers")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for _, r := range result.GeneInfo {
		desc := r.Description
		if d := []rune(desc); len(d) > 40 {
			desc = string(d[:37]) + "..."
		}
		fmt.Fprintf(w, "%-12s  %-40s  %-5s  %-22s  %-13s  %d\n",
			r.Gene, desc, r.Chromosome, r.Location, r.Source, litCount[r.Gene])
	}

	fmt.Fprintf(w, "\n%d genes", len(result.GeneInfo))
	if len(result.Literature) > 0 {
		fmt.Fprintf(w, ", %d literature records", len(result.Literature))
	}
	fmt.Fprintln(w)
}
