// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geneinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/gene-atlas/internal/httputil"
	"github.com/pdiddy/gene-atlas/pkg/types"
)

// ensemblLookupBase is the Ensembl REST lookup-by-symbol endpoint for
// human. Declared as a var so tests can substitute an httptest server.
var ensemblLookupBase = "https://rest.ensembl.org/lookup/symbol/homo_sapiens"

// EnsemblSource queries the Ensembl REST API.
type EnsemblSource struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *EnsemblSource) Name() string { return types.SourceEnsembl }

// Ensembl lookup JSON structure.
type ensemblGene struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	SeqRegionName string `json:"seq_region_name"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	DisplayName   string `json:"display_name"`
}

// Lookup fetches the gene by symbol. An HTTP 404 means Ensembl does not
// know the symbol and is reported as absence, not an error.
func (s *EnsemblSource) Lookup(ctx context.Context, symbol string) (*types.GeneRecord, error) {
	reqURL := ensemblLookupBase + "/" + url.PathEscape(symbol)

	body, err := s.Client.Get(ctx, reqURL, url.Values{"expand": {"1"}})
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Ensembl lookup: %w", err)
	}

	var g ensemblGene
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("parsing Ensembl response: %w", err)
	}

	return &types.GeneRecord{
		Gene:        symbol,
		Description: trimAnnotation(g.Description),
		Chromosome:  orPlaceholder(g.SeqRegionName),
		Location:    formatSpan(g.Start, g.End),
		GeneID:      orPlaceholder(g.ID),
		ProteinName: orPlaceholder(g.DisplayName),
		// Ensembl never carries functional text; point at UniProt instead.
		Function:  "See UniProt for detailed function",
		Source:    types.SourceEnsembl,
		Retrieved: time.Now(),
	}, nil
}

// trimAnnotation keeps the description text before any bracketed
// annotation suffix (e.g. "[Source:HGNC Symbol;Acc:HGNC:11998]").
func trimAnnotation(desc string) string {
	if desc == "" {
		return types.NotAvailable
	}
	if idx := strings.Index(desc, "["); idx >= 0 {
		desc = desc[:idx]
	}
	return strings.TrimSpace(desc)
}

// formatSpan renders a genomic span as "start-end" with thousands
// separators, or the placeholder when a coordinate is missing.
func formatSpan(start, end int64) string {
	return formatCoordinate(start) + "-" + formatCoordinate(end)
}

func formatCoordinate(n int64) string {
	if n <= 0 {
		return types.NotAvailable
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

func orPlaceholder(s string) string {
	if s == "" {
		return types.NotAvailable
	}
	return s
}
