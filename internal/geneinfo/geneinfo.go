// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geneinfo resolves gene symbols to normalized annotation records
// using an ordered fallback chain of sources (Ensembl, then NCBI).
package geneinfo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

// Source looks up one external gene database. Lookup returns (nil, nil)
// when the source has no data for the symbol; a non-nil error means the
// call itself failed. The two cases are deliberately distinct so callers
// cannot conflate "valid empty" with "broken".
type Source interface {
	Name() string
	Lookup(ctx context.Context, symbol string) (*types.GeneRecord, error)
}

// Resolver tries each source in order and falls through on absence or
// failure. It never fails: a symbol no source knows yields a sentinel
// record with Source set to types.SourceNone.
type Resolver struct {
	sources []Source
	logger  zerolog.Logger
}

// NewResolver builds a resolver over the given sources, tried in order.
func NewResolver(logger zerolog.Logger, sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		logger:  logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns exactly one GeneRecord for symbol. The first source that
// yields a record wins and later sources are never consulted. Source
// failures are logged and treated like absence.
func (r *Resolver) Resolve(ctx context.Context, symbol string) types.GeneRecord {
	for _, src := range r.sources {
		rec, err := src.Lookup(ctx, symbol)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("source", src.Name()).
				Str("gene", symbol).
				Msg("source lookup failed")
			continue
		}
		if rec != nil {
			return *rec
		}
	}
	return sentinelRecord(symbol)
}

// sentinelRecord is the final fallback guaranteeing one record per gene.
func sentinelRecord(symbol string) types.GeneRecord {
	return types.GeneRecord{
		Gene:        symbol,
		Description: "Not available",
		Chromosome:  types.NotAvailable,
		Location:    types.NotAvailable,
		GeneID:      types.NotAvailable,
		ProteinName: types.NotAvailable,
		Function:    types.NotAvailable,
		Source:      types.SourceNone,
		Retrieved:   time.Now(),
	}
}
