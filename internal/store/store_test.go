// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleGene() types.GeneRecord {
	return types.GeneRecord{
		Gene:        "TP53",
		Description: "tumor protein p53",
		Chromosome:  "17",
		Location:    "7,661,779-7,687,538",
		GeneID:      "ENSG00000141510",
		ProteinName: "TP53",
		Function:    "See UniProt for detailed function",
		Source:      types.SourceEnsembl,
		Retrieved:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestGeneRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sampleGene()
	require.NoError(t, s.PutGene(ctx, want))

	got, err := s.GetGene(ctx, "TP53")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetGeneMiss(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetGene(context.Background(), "NOSUCHGENE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutGeneUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := sampleGene()
	require.NoError(t, s.PutGene(ctx, rec))

	rec.Source = types.SourceNCBI
	rec.Description = "updated"
	require.NoError(t, s.PutGene(ctx, rec))

	got, err := s.GetGene(ctx, "TP53")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.SourceNCBI, got.Source)
	assert.Equal(t, "updated", got.Description)
}

func TestLiteratureRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := []types.LiteratureRecord{
		{Gene: "TP53", PMID: "38012345", Title: "p53 in cancer", FirstAuthor: "Levine, Arnold", Source: types.SourcePubMed},
		{Gene: "TP53", PMID: "37067890", Title: "A second paper", FirstAuthor: "N/A", Source: types.SourcePubMed},
	}
	require.NoError(t, s.PutLiterature(ctx, "TP53", want))

	got, err := s.GetLiterature(ctx, "TP53")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPutLiteratureReplacesOldRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []types.LiteratureRecord{
		{Gene: "TP53", PMID: "111", Title: "old", Source: types.SourcePubMed},
		{Gene: "TP53", PMID: "222", Title: "old too", Source: types.SourcePubMed},
	}
	require.NoError(t, s.PutLiterature(ctx, "TP53", first))

	second := []types.LiteratureRecord{
		{Gene: "TP53", PMID: "333", Title: "new", Source: types.SourcePubMed},
	}
	require.NoError(t, s.PutLiterature(ctx, "TP53", second))

	got, err := s.GetLiterature(ctx, "TP53")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestGetLiteratureMiss(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetLiterature(context.Background(), "NOSUCHGENE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveResult(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := types.AggregateResult{
		GeneInfo: []types.GeneRecord{
			sampleGene(),
			{Gene: "BRCA1", Source: types.SourceNCBI, Retrieved: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		},
		Literature: []types.LiteratureRecord{
			{Gene: "TP53", PMID: "38012345", Title: "p53 in cancer", Source: types.SourcePubMed},
		},
	}
	require.NoError(t, s.SaveResult(ctx, result))

	gene, err := s.GetGene(ctx, "BRCA1")
	require.NoError(t, err)
	require.NotNil(t, gene)
	assert.Equal(t, types.SourceNCBI, gene.Source)

	lits, err := s.GetLiterature(ctx, "TP53")
	require.NoError(t, err)
	assert.Len(t, lits, 1)

	// BRCA1 had no literature rows; the cache stays empty for it.
	lits, err = s.GetLiterature(ctx, "BRCA1")
	require.NoError(t, err)
	assert.Empty(t, lits)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.PutGene(context.Background(), sampleGene()))
}

func TestReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutGene(ctx, sampleGene()))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetGene(ctx, "TP53")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tumor protein p53", got.Description)
}
