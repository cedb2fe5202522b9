// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package literature retrieves publication records from PubMed and
// normalizes the structured-markup responses into LiteratureRecords.
package literature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/gene-atlas/internal/httputil"
	"github.com/pdiddy/gene-atlas/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can substitute
// an httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// abstractLimit caps the abstract text carried per record.
const abstractLimit = 1000

// Fetcher queries PubMed for publications matching a gene symbol.
type Fetcher struct {
	Client *httputil.Client
}

// esearch JSON structure (db=pubmed).
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch XML structures (rettype=abstract).
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID          string            `xml:"MedlineCitation>PMID"`
	Title         string            `xml:"MedlineCitation>Article>ArticleTitle"`
	AbstractTexts []string          `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	JournalTitle  string            `xml:"MedlineCitation>Article>Journal>Title"`
	PubDate       pubmedDate        `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`
	Authors       []pubmedAuthor    `xml:"MedlineCitation>Article>AuthorList>Author"`
	Keywords      []string          `xml:"MedlineCitation>KeywordList>Keyword"`
	ArticleIDs    []pubmedArticleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type pubmedArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// Fetch searches PubMed for symbol across title/abstract, MeSH terms, and
// keywords, then retrieves all matched abstracts in one batched efetch
// call. No matches yields an empty slice, not an error. maxResults caps
// both the search and the returned records; a cap of zero or less returns
// nothing without a network call.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, maxResults int) ([]types.LiteratureRecord, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	pmids, err := f.search(ctx, symbol, maxResults)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return []types.LiteratureRecord{}, nil
	}

	articles, err := f.fetchAbstracts(ctx, pmids)
	if err != nil {
		return nil, err
	}

	records := make([]types.LiteratureRecord, 0, len(articles))
	for _, a := range articles {
		records = append(records, normalizeArticle(symbol, a))
	}
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	return records, nil
}

// search returns the PMIDs matching symbol, sorted by relevance.
func (f *Fetcher) search(ctx context.Context, symbol string, maxResults int) ([]string, error) {
	params := url.Values{
		"db": {"pubmed"},
		"term": {fmt.Sprintf("%s[Title/Abstract] OR %s[MeSH Terms] OR %s[Keyword]",
			symbol, symbol, symbol)},
		"retmax":  {fmt.Sprintf("%d", maxResults)},
		"sort":    {"relevance"},
		"retmode": {"json"},
	}
	if key := f.Client.APIKey(); key != "" {
		params.Set("api_key", key)
	}

	body, err := f.Client.Get(ctx, pubmedSearchBase, params)
	if err != nil {
		return nil, fmt.Errorf("PubMed search: %w", err)
	}

	var sr pubmedSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed search response: %w", err)
	}
	return sr.ESearchResult.IDList, nil
}

// fetchAbstracts retrieves full abstract records for all PMIDs in a
// single call; batching the comma-joined ID list avoids one round trip
// per article.
func (f *Fetcher) fetchAbstracts(ctx context.Context, pmids []string) ([]pubmedArticle, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	}
	if key := f.Client.APIKey(); key != "" {
		params.Set("api_key", key)
	}

	body, err := f.Client.Get(ctx, pubmedFetchBase, params)
	if err != nil {
		return nil, fmt.Errorf("PubMed fetch: %w", err)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing PubMed fetch response: %w", err)
	}
	return set.Articles, nil
}

// normalizeArticle maps one parsed article onto a LiteratureRecord,
// substituting the placeholder for every missing sub-element.
func normalizeArticle(symbol string, a pubmedArticle) types.LiteratureRecord {
	authors := make([]string, 0, len(a.Authors))
	for _, au := range a.Authors {
		name := authorName(au)
		if name != "" {
			authors = append(authors, name)
		}
	}

	firstAuthor := types.NotAvailable
	if len(authors) > 0 {
		firstAuthor = authors[0]
	}

	return types.LiteratureRecord{
		Gene:        symbol,
		PMID:        orPlaceholder(strings.TrimSpace(a.PMID)),
		Title:       orPlaceholder(strings.TrimSpace(a.Title)),
		FirstAuthor: firstAuthor,
		Authors:     joinOrPlaceholder(authors),
		Journal:     orPlaceholder(strings.TrimSpace(a.JournalTitle)),
		PubDate:     formatPubDate(a.PubDate),
		Abstract:    abstractText(a.AbstractTexts),
		Keywords:    joinOrPlaceholder(trimAll(a.Keywords)),
		DOI:         findDOI(a.ArticleIDs),
		Source:      types.SourcePubMed,
	}
}

// authorName renders an author as "LastName, ForeName"; partial names
// keep whichever part exists.
func authorName(a pubmedAuthor) string {
	last := strings.TrimSpace(a.LastName)
	fore := strings.TrimSpace(a.ForeName)
	switch {
	case last == "" && fore == "":
		return ""
	case fore == "":
		return last
	case last == "":
		return fore
	}
	return last + ", " + fore
}

// formatPubDate concatenates year-month-day for whatever parts the record
// carries, else the placeholder.
func formatPubDate(d pubmedDate) string {
	year := strings.TrimSpace(d.Year)
	month := strings.TrimSpace(d.Month)
	day := strings.TrimSpace(d.Day)
	if year == "" && month == "" && day == "" {
		return types.NotAvailable
	}
	return strings.TrimRight(fmt.Sprintf("%s-%s-%s", year, month, day), "-")
}

// abstractText joins the abstract sections and truncates to abstractLimit
// characters with an ellipsis marker when longer.
func abstractText(sections []string) string {
	text := strings.TrimSpace(strings.Join(trimAll(sections), " "))
	if text == "" {
		return types.NotAvailable
	}
	// Truncate on runes, not bytes: a byte cut can land mid-rune and a
	// multibyte abstract under the character limit must pass through.
	if r := []rune(text); len(r) > abstractLimit {
		return string(r[:abstractLimit]) + "..."
	}
	return text
}

// findDOI returns the first article ID with IdType "doi".
func findDOI(ids []pubmedArticleID) string {
	for _, id := range ids {
		if strings.EqualFold(id.IDType, "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	return types.NotAvailable
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func joinOrPlaceholder(parts []string) string {
	if len(parts) == 0 {
		return types.NotAvailable
	}
	return strings.Join(parts, "; ")
}

func orPlaceholder(s string) string {
	if s == "" {
		return types.NotAvailable
	}
	return s
}
