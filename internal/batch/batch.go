// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs gene resolution and literature retrieval over a gene
// list and merges per-gene results into one aggregate collection.
package batch

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

const defaultWorkers = 3

// GeneResolver produces exactly one record per symbol and never fails.
type GeneResolver interface {
	Resolve(ctx context.Context, symbol string) types.GeneRecord
}

// LiteratureFetcher retrieves up to max publication records for a symbol.
type LiteratureFetcher interface {
	Fetch(ctx context.Context, symbol string, max int) ([]types.LiteratureRecord, error)
}

// Config holds the per-run batch options.
type Config struct {
	// MaxLiterature is the per-gene PubMed result cap; zero disables
	// literature retrieval.
	MaxLiterature int

	// Workers is the resolver pool size used only when literature is
	// disabled. PubMed enforces a strict global rate ceiling, so any run
	// that fetches literature processes genes one at a time in input order.
	Workers int
}

// workerCount is the single mode-selection point: both modes share one
// execution path and differ only in the degree of parallelism.
func (c Config) workerCount() int {
	if c.MaxLiterature > 0 {
		return 1
	}
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}

// Summary holds the outcome counts of one batch run.
type Summary struct {
	Annotated      int
	Failed         int
	LiteratureRows int
}

// Total returns the number of genes processed.
func (s Summary) Total() int {
	return s.Annotated + s.Failed
}

// HasFailures reports whether any gene failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Processor orchestrates per-gene work over a worker pool.
type Processor struct {
	resolver   GeneResolver
	literature LiteratureFetcher
	logger     zerolog.Logger
}

// NewProcessor builds a batch processor. literature may be nil when no
// run will ever request literature.
func NewProcessor(resolver GeneResolver, literature LiteratureFetcher, logger zerolog.Logger) *Processor {
	return &Processor{
		resolver:   resolver,
		literature: literature,
		logger:     logger.With().Str("component", "batch").Logger(),
	}
}

// outcome is one gene's result crossing from worker to collector.
type outcome struct {
	symbol     string
	record     types.GeneRecord
	literature []types.LiteratureRecord
	err        error
}

// Run processes genes and merges the per-gene results, printing per-item
// progress to w. A failing gene is logged and omitted; it never aborts
// the batch. With literature enabled the output keeps gene input order;
// otherwise records arrive in completion order.
func (p *Processor) Run(ctx context.Context, genes []string, cfg Config, w io.Writer) (types.AggregateResult, Summary) {
	workers := cfg.workerCount()

	jobs := make(chan string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				outcomes <- p.processGene(ctx, symbol, cfg)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, g := range genes {
			select {
			case <-ctx.Done():
				return
			case jobs <- g:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var result types.AggregateResult
	var summary Summary
	processed := 0
	for out := range outcomes {
		processed++
		if out.err != nil {
			summary.Failed++
			p.logger.Error().Err(out.err).Str("gene", out.symbol).Msg("gene processing failed")
			fmt.Fprintf(w, "[%d/%d] failed: %s (%v)\n", processed, len(genes), out.symbol, out.err)
			continue
		}
		summary.Annotated++
		summary.LiteratureRows += len(out.literature)
		result.GeneInfo = append(result.GeneInfo, out.record)
		result.Literature = append(result.Literature, out.literature...)
		fmt.Fprintf(w, "[%d/%d] %s: %s\n", processed, len(genes), out.symbol, out.record.Source)
	}

	fmt.Fprintf(w, "\nBatch summary: %d annotated, %d literature rows, %d failed (total: %d)\n",
		summary.Annotated, summary.LiteratureRows, summary.Failed, summary.Total())
	return result, summary
}

// processGene resolves one gene and optionally fetches its literature.
// Resolution itself cannot fail; a literature failure fails the gene.
func (p *Processor) processGene(ctx context.Context, symbol string, cfg Config) outcome {
	record := p.resolver.Resolve(ctx, symbol)

	if cfg.MaxLiterature <= 0 || p.literature == nil {
		return outcome{symbol: symbol, record: record}
	}

	lits, err := p.literature.Fetch(ctx, symbol, cfg.MaxLiterature)
	if err != nil {
		return outcome{symbol: symbol, err: fmt.Errorf("literature fetch: %w", err)}
	}
	return outcome{symbol: symbol, record: record, literature: lits}
}
