// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

func sampleResult() types.AggregateResult {
	return types.AggregateResult{
		GeneInfo: []types.GeneRecord{
			{
				Gene:        "TP53",
				Description: "tumor protein p53",
				Chromosome:  "17",
				Location:    "7,661,779-7,687,538",
				GeneID:      "ENSG00000141510",
				ProteinName: "TP53",
				Function:    "See UniProt for detailed function",
				Source:      types.SourceEnsembl,
				Retrieved:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			},
			{
				Gene:        "FAKEGENE",
				Description: "Not available",
				Chromosome:  types.NotAvailable,
				Location:    types.NotAvailable,
				GeneID:      types.NotAvailable,
				ProteinName: types.NotAvailable,
				Function:    types.NotAvailable,
				Source:      types.SourceNone,
				Retrieved:   time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC),
			},
		},
		Literature: []types.LiteratureRecord{
			{
				Gene:        "TP53",
				PMID:        "38012345",
				Title:       "The p53 pathway in cancer",
				FirstAuthor: "Levine, Arnold",
				Journal:     "Nature Genetics",
				PubDate:     "2023-11-02",
				DOI:         "10.1038/s41588-023-01510-y",
				Source:      types.SourcePubMed,
			},
		},
	}
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExcel(sampleResult(), &buf); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}

	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Gene Information" || sheets[1] != "Literature" {
		t.Fatalf("sheets = %v, want [Gene Information Literature]", sheets)
	}

	rows, err := wb.GetRows("Gene Information")
	if err != nil {
		t.Fatalf("reading gene sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("gene sheet has %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Gene" || rows[0][7] != "Source" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "TP53" || rows[1][3] != "7,661,779-7,687,538" {
		t.Errorf("unexpected TP53 row: %v", rows[1])
	}
	if rows[2][7] != types.SourceNone {
		t.Errorf("sentinel row source = %q, want %q", rows[2][7], types.SourceNone)
	}

	rows, err = wb.GetRows("Literature")
	if err != nil {
		t.Fatalf("reading literature sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("literature sheet has %d rows, want header plus 1", len(rows))
	}
	if rows[1][1] != "38012345" {
		t.Errorf("unexpected PMID in row: %v", rows[1])
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleResult(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got types.AggregateResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling output: %v", err)
	}
	if len(got.GeneInfo) != 2 || len(got.Literature) != 1 {
		t.Fatalf("got %d genes and %d literature records, want 2 and 1",
			len(got.GeneInfo), len(got.Literature))
	}
	if got.GeneInfo[0].Gene != "TP53" {
		t.Errorf("first gene = %q, want TP53", got.GeneInfo[0].Gene)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(sampleResult(), &buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	var got types.AggregateResult
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling output: %v", err)
	}
	if got.Literature[0].DOI != "10.1038/s41588-023-01510-y" {
		t.Errorf("DOI = %q after round trip", got.Literature[0].DOI)
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleResult(), &buf)

	out := buf.String()
	for _, want := range []string{"TP53", "tumor protein p53", "17", "Ensembl", "No data found", "2 genes", "1 literature records"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(types.AggregateResult{}, &buf)
	if !strings.Contains(buf.String(), "No results found.") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestWriteDispatch(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format types.ReportFormat
		file   string
	}{
		{types.FormatExcel, "out.xlsx"},
		{types.FormatJSON, "out.json"},
		{types.FormatYAML, "out.yaml"},
		{types.FormatTable, "out.txt"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := Write(sampleResult(), path, tt.format); err != nil {
				t.Fatalf("Write(%s): %v", tt.format, err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Size() == 0 {
				t.Error("output file is empty")
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	if err := Write(sampleResult(), path, types.ReportFormat("csv")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "nested", "out.json")
	if err := Write(sampleResult(), path, types.FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}
