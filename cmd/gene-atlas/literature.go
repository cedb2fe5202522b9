// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gene-atlas/internal/httputil"
	"github.com/pdiddy/gene-atlas/internal/literature"
	"github.com/pdiddy/gene-atlas/internal/logging"
	"github.com/pdiddy/gene-atlas/pkg/types"
)

var literatureCmd = &cobra.Command{
	Use:   "literature [gene symbol]",
	Short: "Search PubMed for publications about a gene",
	Long: `Literature searches PubMed for publications mentioning the gene symbol
in the title, abstract, MeSH terms, or keywords, ranked by relevance,
and prints the matching records.`,
	Args: cobra.ExactArgs(1),
	RunE: runLiterature,
}

func init() {
	literatureCmd.Flags().Int("max-results", 5, "maximum publications to return")
	literatureCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(literatureCmd)
}

func runLiterature(cmd *cobra.Command, args []string) error {
	cfg := annotateConfig(cmd)
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	fetcher := &literature.Fetcher{
		Client: httputil.NewClient(cfg.ClientConfig, logging.NewLogger("literature")),
	}
	records, err := fetcher.Fetch(context.Background(), args[0], maxResults)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Printf("No publications found for %s.\n", args[0])
		return nil
	}

	for i, rec := range records {
		fmt.Printf("%d. %s\n", i+1, rec.Title)
		fmt.Printf("   PMID %s | %s | %s | %s\n", rec.PMID, rec.FirstAuthor, rec.Journal, rec.PubDate)
		if rec.DOI != types.NotAvailable && rec.DOI != "" {
			fmt.Printf("   doi:%s\n", rec.DOI)
		}
		fmt.Println()
	}
	fmt.Printf("%d publication(s)\n", len(records))
	return nil
}
