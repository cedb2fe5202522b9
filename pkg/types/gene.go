// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gene-atlas pipeline.
package types

import "time"

// Source labels for GeneRecord and LiteratureRecord.
const (
	SourceEnsembl = "Ensembl"
	SourceNCBI    = "NCBI"
	SourcePubMed  = "PubMed"
	SourceNone    = "No data found"
)

// NotAvailable is the placeholder substituted for any field a source
// response did not supply.
const NotAvailable = "N/A"

// GeneRecord is one normalized annotation result for a single gene from a
// single source. Every resolution produces exactly one GeneRecord; when no
// source has data, Source is SourceNone and the descriptive fields carry
// placeholders.
type GeneRecord struct {
	// Gene is the query symbol, preserved verbatim.
	Gene string `json:"gene" yaml:"gene"`

	// Description is the free-text gene description.
	Description string `json:"description" yaml:"description"`

	// Chromosome is the chromosome name (e.g. "17").
	Chromosome string `json:"chromosome" yaml:"chromosome"`

	// Location is the genomic span as "start-end" with thousands separators.
	Location string `json:"location" yaml:"location"`

	// GeneID is the source-specific gene identifier (Ensembl stable ID or
	// NCBI numeric gene ID).
	GeneID string `json:"gene_id" yaml:"gene_id"`

	// ProteinName is the display or protein name.
	ProteinName string `json:"protein_name" yaml:"protein_name"`

	// Function is the functional summary text.
	Function string `json:"function" yaml:"function"`

	// Source identifies which adapter produced the record.
	Source string `json:"source" yaml:"source"`

	// Retrieved is the timestamp of the lookup.
	Retrieved time.Time `json:"retrieved" yaml:"retrieved"`
}

// LiteratureRecord is one matched PubMed publication for a gene.
type LiteratureRecord struct {
	// Gene is the query symbol the publication was matched against.
	Gene string `json:"gene" yaml:"gene"`

	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// FirstAuthor is the first listed author ("LastName, ForeName").
	FirstAuthor string `json:"first_author" yaml:"first_author"`

	// Authors is the full ordered author list, semicolon-joined.
	Authors string `json:"authors" yaml:"authors"`

	// Journal is the journal title.
	Journal string `json:"journal" yaml:"journal"`

	// PubDate is a best-effort "Y-M-D" publication date; partial dates keep
	// whatever parts the record supplied.
	PubDate string `json:"pub_date" yaml:"pub_date"`

	// Abstract is the article abstract, truncated to 1000 characters with a
	// trailing ellipsis when longer.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords is the semicolon-joined keyword list.
	Keywords string `json:"keywords" yaml:"keywords"`

	// DOI is the digital object identifier.
	DOI string `json:"doi" yaml:"doi"`

	// Source is always SourcePubMed.
	Source string `json:"source" yaml:"source"`
}

// AggregateResult collects the two record categories produced by one batch
// run. It is created fresh per invocation and mutated only by the batch
// collector; sequential runs keep gene input order, parallel runs append in
// completion order.
type AggregateResult struct {
	GeneInfo   []GeneRecord       `json:"gene_info" yaml:"gene_info"`
	Literature []LiteratureRecord `json:"literature" yaml:"literature"`
}

// IsEmpty reports whether the batch produced no records at all.
func (r AggregateResult) IsEmpty() bool {
	return len(r.GeneInfo) == 0 && len(r.Literature) == 0
}
