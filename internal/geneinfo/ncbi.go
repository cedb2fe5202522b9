// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geneinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/pdiddy/gene-atlas/internal/httputil"
	"github.com/pdiddy/gene-atlas/pkg/types"
)

// NCBI Entrez E-utilities endpoints for the gene database. Declared as
// vars so tests can substitute an httptest server.
var (
	ncbiSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	ncbiSummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// functionLimit caps the Function field derived from the NCBI summary.
const functionLimit = 200

// NCBISource queries NCBI Gene through esearch + esummary.
type NCBISource struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *NCBISource) Name() string { return types.SourceNCBI }

// NCBI E-utilities JSON structures.
type ncbiSearchResponse struct {
	ESearchResult ncbiSearchResult `json:"esearchresult"`
}

type ncbiSearchResult struct {
	IDList []string `json:"idlist"`
}

type ncbiSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type ncbiGeneSummary struct {
	Summary    string `json:"summary"`
	Chromosome string `json:"chromosome"`
}

// Lookup resolves the symbol to a numeric gene ID and fetches its summary.
// When the symbol search yields no IDs, Lookup reports absence without a
// summary call. Multiple IDs for one symbol are not disambiguated; the
// first search match wins.
func (s *NCBISource) Lookup(ctx context.Context, symbol string) (*types.GeneRecord, error) {
	geneID, err := s.searchGeneID(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if geneID == "" {
		return nil, nil
	}

	summary, err := s.fetchSummary(ctx, geneID)
	if err != nil {
		return nil, err
	}

	return &types.GeneRecord{
		Gene:        symbol,
		Description: orPlaceholder(summary.Summary),
		Chromosome:  orPlaceholder(summary.Chromosome),
		Location:    types.NotAvailable,
		GeneID:      geneID,
		ProteinName: types.NotAvailable,
		Function:    functionText(summary.Summary),
		Source:      types.SourceNCBI,
		Retrieved:   time.Now(),
	}, nil
}

// searchGeneID runs esearch against db=gene with the organism fixed to
// human. Returns "" when no gene matches.
func (s *NCBISource) searchGeneID(ctx context.Context, symbol string) (string, error) {
	params := url.Values{
		"db":      {"gene"},
		"term":    {fmt.Sprintf("%s[Gene Name] AND human[Organism]", symbol)},
		"retmode": {"json"},
	}
	if key := s.Client.APIKey(); key != "" {
		params.Set("api_key", key)
	}

	body, err := s.Client.Get(ctx, ncbiSearchBase, params)
	if err != nil {
		return "", fmt.Errorf("NCBI gene search: %w", err)
	}

	var sr ncbiSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("parsing NCBI search response: %w", err)
	}

	if len(sr.ESearchResult.IDList) == 0 {
		return "", nil
	}
	return sr.ESearchResult.IDList[0], nil
}

// fetchSummary runs esummary for one gene ID. The response keys the
// result object by the ID itself, next to a "uids" array.
func (s *NCBISource) fetchSummary(ctx context.Context, geneID string) (ncbiGeneSummary, error) {
	params := url.Values{
		"db":      {"gene"},
		"id":      {geneID},
		"retmode": {"json"},
	}
	if key := s.Client.APIKey(); key != "" {
		params.Set("api_key", key)
	}

	body, err := s.Client.Get(ctx, ncbiSummaryBase, params)
	if err != nil {
		return ncbiGeneSummary{}, fmt.Errorf("NCBI gene summary: %w", err)
	}

	var sr ncbiSummaryResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return ncbiGeneSummary{}, fmt.Errorf("parsing NCBI summary response: %w", err)
	}

	raw, ok := sr.Result[geneID]
	if !ok {
		return ncbiGeneSummary{}, fmt.Errorf("NCBI summary missing entry for gene %s", geneID)
	}

	var summary ncbiGeneSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return ncbiGeneSummary{}, fmt.Errorf("parsing NCBI gene summary %s: %w", geneID, err)
	}
	return summary, nil
}

// functionText derives the Function field from the summary text,
// truncating to functionLimit characters with an ellipsis when longer.
func functionText(summary string) string {
	if summary == "" {
		return types.NotAvailable
	}
	// Rune-based so multibyte summaries are neither cut mid-rune nor
	// truncated while still under the character limit.
	if r := []rune(summary); len(r) > functionLimit {
		return string(r[:functionLimit]) + "..."
	}
	return summary
}
