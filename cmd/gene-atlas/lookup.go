// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [gene symbol]",
	Short: "Look up metadata for a single gene",
	Long: `Lookup resolves one gene symbol against Ensembl with NCBI fallback and
prints the record. The cache is not consulted or updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Bool("json", false, "output the record as JSON")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := annotateConfig(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")

	record := newResolver(cfg).Resolve(context.Background(), args[0])

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Printf("Gene:         %s\n", record.Gene)
	fmt.Printf("Description:  %s\n", record.Description)
	fmt.Printf("Chromosome:   %s\n", record.Chromosome)
	fmt.Printf("Location:     %s\n", record.Location)
	fmt.Printf("Gene ID:      %s\n", record.GeneID)
	fmt.Printf("Protein:      %s\n", record.ProteinName)
	fmt.Printf("Function:     %s\n", record.Function)
	fmt.Printf("Source:       %s\n", record.Source)
	if record.Source == types.SourceNone {
		fmt.Println("\nNo metadata found in Ensembl or NCBI for this symbol.")
	}
	return nil
}
