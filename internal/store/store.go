// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store caches annotation results in a local SQLite database so
// repeated runs over the same gene list skip the network entirely.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gene-atlas/pkg/types"
)

const dbFile = "gene_atlas.db"

// Store manages the annotation cache SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at dir/gene_atlas.db,
// creating the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS gene_records (
			gene TEXT PRIMARY KEY,
			description TEXT,
			chromosome TEXT,
			location TEXT,
			gene_id TEXT,
			protein_name TEXT,
			function TEXT,
			source TEXT,
			retrieved TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS literature (
			gene TEXT NOT NULL,
			pmid TEXT NOT NULL,
			title TEXT,
			first_author TEXT,
			authors TEXT,
			journal TEXT,
			pub_date TEXT,
			abstract TEXT,
			keywords TEXT,
			doi TEXT,
			source TEXT,
			PRIMARY KEY (gene, pmid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_literature_gene ON literature(gene)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// PutGene upserts one gene record.
func (s *Store) PutGene(ctx context.Context, rec types.GeneRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gene_records (gene, description, chromosome, location, gene_id, protein_name, function, source, retrieved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(gene) DO UPDATE SET
			description=excluded.description, chromosome=excluded.chromosome,
			location=excluded.location, gene_id=excluded.gene_id,
			protein_name=excluded.protein_name, function=excluded.function,
			source=excluded.source, retrieved=excluded.retrieved`,
		rec.Gene, rec.Description, rec.Chromosome, rec.Location,
		rec.GeneID, rec.ProteinName, rec.Function, rec.Source,
		rec.Retrieved.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting gene %s: %w", rec.Gene, err)
	}
	return nil
}

// GetGene returns the cached record for a gene symbol, or nil when the
// symbol has never been cached.
func (s *Store) GetGene(ctx context.Context, symbol string) (*types.GeneRecord, error) {
	var rec types.GeneRecord
	var retrieved string
	err := s.db.QueryRowContext(ctx,
		`SELECT gene, description, chromosome, location, gene_id, protein_name, function, source, retrieved
		 FROM gene_records WHERE gene = ?`, symbol,
	).Scan(&rec.Gene, &rec.Description, &rec.Chromosome, &rec.Location,
		&rec.GeneID, &rec.ProteinName, &rec.Function, &rec.Source, &retrieved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying gene %s: %w", symbol, err)
	}
	if t, err := time.Parse(time.RFC3339, retrieved); err == nil {
		rec.Retrieved = t
	}
	return &rec, nil
}

// PutLiterature upserts the literature rows for one gene, replacing any
// previously cached rows for that gene.
func (s *Store) PutLiterature(ctx context.Context, symbol string, records []types.LiteratureRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM literature WHERE gene = ?`, symbol); err != nil {
		return fmt.Errorf("deleting old literature: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO literature (gene, pmid, title, first_author, authors, journal, pub_date, abstract, keywords, doi, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Gene, rec.PMID, rec.Title, rec.FirstAuthor, rec.Authors,
			rec.Journal, rec.PubDate, rec.Abstract, rec.Keywords, rec.DOI, rec.Source,
		)
		if err != nil {
			return fmt.Errorf("inserting literature %s/%s: %w", rec.Gene, rec.PMID, err)
		}
	}

	return tx.Commit()
}

// GetLiterature returns the cached literature rows for a gene symbol in
// insertion order. An uncached gene yields a nil slice.
func (s *Store) GetLiterature(ctx context.Context, symbol string) ([]types.LiteratureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gene, pmid, title, first_author, authors, journal, pub_date, abstract, keywords, doi, source
		 FROM literature WHERE gene = ? ORDER BY rowid`, symbol)
	if err != nil {
		return nil, fmt.Errorf("querying literature for %s: %w", symbol, err)
	}
	defer rows.Close()

	var records []types.LiteratureRecord
	for rows.Next() {
		var rec types.LiteratureRecord
		if err := rows.Scan(&rec.Gene, &rec.PMID, &rec.Title, &rec.FirstAuthor,
			&rec.Authors, &rec.Journal, &rec.PubDate, &rec.Abstract,
			&rec.Keywords, &rec.DOI, &rec.Source); err != nil {
			return nil, fmt.Errorf("scanning literature row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveResult caches every record in an aggregate result.
func (s *Store) SaveResult(ctx context.Context, result types.AggregateResult) error {
	byGene := make(map[string][]types.LiteratureRecord)
	for _, lit := range result.Literature {
		byGene[lit.Gene] = append(byGene[lit.Gene], lit)
	}

	for _, rec := range result.GeneInfo {
		if err := s.PutGene(ctx, rec); err != nil {
			return err
		}
		if lits, ok := byGene[rec.Gene]; ok {
			if err := s.PutLiterature(ctx, rec.Gene, lits); err != nil {
				return err
			}
		}
	}
	return nil
}
