// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-atlas/internal/batch"
	"github.com/pdiddy/gene-atlas/internal/geneinfo"
	"github.com/pdiddy/gene-atlas/internal/httputil"
	"github.com/pdiddy/gene-atlas/internal/literature"
	"github.com/pdiddy/gene-atlas/internal/logging"
	"github.com/pdiddy/gene-atlas/internal/report"
	"github.com/pdiddy/gene-atlas/internal/secrets"
	"github.com/pdiddy/gene-atlas/internal/store"
	"github.com/pdiddy/gene-atlas/pkg/types"
)

const defaultUserAgent = "gene-atlas/0.1"

var annotateCmd = &cobra.Command{
	Use:   "annotate [gene symbols...]",
	Short: "Annotate genes with metadata and optional literature",
	Long: `Annotate looks up each gene symbol against Ensembl, falls back to NCBI
Gene when Ensembl has no record, and optionally attaches recent PubMed
publications. Genes cached from earlier runs are served from the local
SQLite cache unless --refresh is given.

Runs that fetch literature process genes sequentially; metadata-only runs
use a small worker pool.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().Int("max-literature", 5, "PubMed results per gene (0 disables literature)")
	annotateCmd.Flags().Int("workers", 3, "worker count for metadata-only runs")
	annotateCmd.Flags().Duration("timeout", 45*time.Second, "HTTP request timeout")
	annotateCmd.Flags().StringP("output", "o", "gene_annotations.xlsx", "output file path")
	annotateCmd.Flags().String("format", string(types.FormatExcel), "output format (xlsx, json, yaml, table)")
	annotateCmd.Flags().String("cache-dir", "gene_data_cache", "SQLite cache directory")
	annotateCmd.Flags().Bool("refresh", false, "ignore cached records and query the APIs again")
	annotateCmd.Flags().String("genes-file", "", "file with one gene symbol per line")

	viper.BindPFlag("annotate.max-literature", annotateCmd.Flags().Lookup("max-literature"))
	viper.BindPFlag("annotate.workers", annotateCmd.Flags().Lookup("workers"))
	viper.BindPFlag("annotate.timeout", annotateCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("annotate.cache-dir", annotateCmd.Flags().Lookup("cache-dir"))

	rootCmd.AddCommand(annotateCmd)
}

func annotateConfig(cmd *cobra.Command) types.AnnotateConfig {
	apiKey, _ := cmd.Flags().GetString("api-key")

	return types.AnnotateConfig{
		ClientConfig: types.ClientConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("annotate.timeout"),
				UserAgent: defaultUserAgent,
			},
			APIKey: secretDefault(secrets.NCBIAPIKey, apiKey),
		},
		MaxLiterature: viper.GetInt("annotate.max-literature"),
		Workers:       viper.GetInt("annotate.workers"),
		CacheDir:      viper.GetString("annotate.cache-dir"),
	}
}

// newResolver wires the Ensembl and NCBI sources in fallback order.
// Each source gets its own client so rate limits apply per host.
func newResolver(cfg types.AnnotateConfig) *geneinfo.Resolver {
	logger := logging.NewLogger("geneinfo")

	ensemblCfg := cfg.ClientConfig
	ensemblCfg.APIKey = ""

	return geneinfo.NewResolver(logger,
		&geneinfo.EnsemblSource{Client: httputil.NewClient(ensemblCfg, logger)},
		&geneinfo.NCBISource{Client: httputil.NewClient(cfg.ClientConfig, logger)},
	)
}

// readGenesFile reads one gene symbol per line, skipping blank lines and
// #-comments.
func readGenesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genes file: %w", err)
	}
	var genes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		genes = append(genes, line)
	}
	return genes, nil
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if genesFile, _ := cmd.Flags().GetString("genes-file"); genesFile != "" {
		fromFile, err := readGenesFile(genesFile)
		if err != nil {
			return err
		}
		args = append(args, fromFile...)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide one or more gene symbols (arguments or --genes-file)")
	}

	cfg := annotateConfig(cmd)
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	refresh, _ := cmd.Flags().GetBool("refresh")

	cache, err := store.Open(cfg.CacheDir)
	if err != nil {
		return err
	}
	defer cache.Close()

	ctx := context.Background()
	logger := logging.NewLogger("annotate")

	// Serve from cache where possible, then fetch the rest.
	cached := make(map[string]types.GeneRecord)
	cachedLit := make(map[string][]types.LiteratureRecord)
	var pending []string
	for _, gene := range args {
		if refresh {
			pending = append(pending, gene)
			continue
		}
		rec, lits, ok := cachedGene(ctx, cache, gene, cfg.MaxLiterature)
		if !ok {
			pending = append(pending, gene)
			continue
		}
		cached[gene] = rec
		cachedLit[gene] = lits
	}
	if len(cached) > 0 {
		fmt.Fprintf(os.Stdout, "Serving %d of %d genes from cache\n", len(cached), len(args))
	}

	var fresh types.AggregateResult
	var summary batch.Summary
	if len(pending) > 0 {
		processor := batch.NewProcessor(
			newResolver(cfg),
			&literature.Fetcher{Client: httputil.NewClient(cfg.ClientConfig, logging.NewLogger("literature"))},
			logger,
		)
		fresh, summary = processor.Run(ctx, pending, batch.Config{
			MaxLiterature: cfg.MaxLiterature,
			Workers:       cfg.Workers,
		}, os.Stdout)

		if err := cache.SaveResult(ctx, fresh); err != nil {
			logger.Warn().Err(err).Msg("caching results failed")
		}
	}

	result := assembleResult(args, cached, cachedLit, fresh)
	if err := report.Write(result, output, types.ReportFormat(format)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", output)

	if summary.HasFailures() {
		return fmt.Errorf("%d gene(s) failed annotation", summary.Failed)
	}
	return nil
}

// cachedGene reports whether a gene can be served entirely from cache.
// When literature is requested, a gene with no cached literature rows is
// treated as uncached so its publications get fetched.
func cachedGene(ctx context.Context, cache *store.Store, gene string, maxLiterature int) (types.GeneRecord, []types.LiteratureRecord, bool) {
	rec, err := cache.GetGene(ctx, gene)
	if err != nil || rec == nil {
		return types.GeneRecord{}, nil, false
	}
	if maxLiterature <= 0 {
		return *rec, nil, true
	}
	lits, err := cache.GetLiterature(ctx, gene)
	if err != nil || len(lits) == 0 {
		return types.GeneRecord{}, nil, false
	}
	if len(lits) > maxLiterature {
		lits = lits[:maxLiterature]
	}
	return *rec, lits, true
}

// assembleResult merges cached and freshly fetched records back into
// gene input order. Genes that failed annotation are absent from both
// maps and stay omitted.
func assembleResult(genes []string, cached map[string]types.GeneRecord, cachedLit map[string][]types.LiteratureRecord, fresh types.AggregateResult) types.AggregateResult {
	freshGenes := make(map[string]types.GeneRecord, len(fresh.GeneInfo))
	for _, rec := range fresh.GeneInfo {
		freshGenes[rec.Gene] = rec
	}
	freshLit := make(map[string][]types.LiteratureRecord)
	for _, lit := range fresh.Literature {
		freshLit[lit.Gene] = append(freshLit[lit.Gene], lit)
	}

	var result types.AggregateResult
	for _, gene := range genes {
		if rec, ok := cached[gene]; ok {
			result.GeneInfo = append(result.GeneInfo, rec)
			result.Literature = append(result.Literature, cachedLit[gene]...)
			continue
		}
		if rec, ok := freshGenes[gene]; ok {
			result.GeneInfo = append(result.GeneInfo, rec)
			result.Literature = append(result.Literature, freshLit[gene]...)
		}
	}
	return result
}
