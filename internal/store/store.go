// Package store persists decoded variant streams in DuckDB for
// downstream querying.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/variantlab/gtmatrix/internal/vcf"
)

// Store manages a DuckDB connection holding decoded variants and
// per-sample genotypes.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an
// empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR,
		pos BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		ref_len INTEGER,
		alt_len INTEGER,
		qual VARCHAR,
		filter VARCHAR,
		info VARCHAR,
		format VARCHAR
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS genotypes (
		chrom VARCHAR,
		pos BIGINT,
		sample_idx INTEGER,
		allele1 SMALLINT,
		allele2 SMALLINT,
		p_ref DOUBLE,
		p_het DOUBLE,
		p_alt DOUBLE
	)`)
	return err
}

// Result bundles one decoded record with whichever genotype matrices
// were requested for it. WriteResults reads the slices immediately, so
// each Result must carry its own copies when decode buffers are reused
// between records.
type Result struct {
	Record     *vcf.Record
	Haplotypes []int8    // length 2*nsamples, or nil
	GenoProbs  []float32 // length 3*nsamples, or nil
}

// WriteResults batch-inserts decoded records and their genotype rows
// using the DuckDB Appender API. Matrices a Result does not carry are
// stored as NULL columns.
func (s *Store) WriteResults(results []Result) error {
	if len(results) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := s.appendVariants(conn, results); err != nil {
		return err
	}
	return s.appendGenotypes(conn, results)
}

func (s *Store) appendVariants(conn *sql.Conn, results []Result) error {
	appender, err := newAppender(conn, "variants")
	if err != nil {
		return err
	}
	defer appender.Close()

	for _, r := range results {
		rec := r.Record
		if err := appender.AppendRow(
			rec.Chrom, rec.Pos, rec.ID, rec.Ref, rec.Alt,
			int32(rec.RefLen), int32(rec.AltLen),
			rec.Qual, rec.Filter, rec.Info, rec.Format,
		); err != nil {
			return fmt.Errorf("append variant: %w", err)
		}
	}

	return appender.Flush()
}

func (s *Store) appendGenotypes(conn *sql.Conn, results []Result) error {
	appender, err := newAppender(conn, "genotypes")
	if err != nil {
		return err
	}
	defer appender.Close()

	for _, r := range results {
		nsamples := 0
		switch {
		case r.Haplotypes != nil:
			nsamples = len(r.Haplotypes) / 2
		case r.GenoProbs != nil:
			nsamples = len(r.GenoProbs) / 3
		default:
			continue
		}

		for i := 0; i < nsamples; i++ {
			var allele1, allele2 driver.Value
			if r.Haplotypes != nil {
				allele1 = int16(r.Haplotypes[2*i])
				allele2 = int16(r.Haplotypes[2*i+1])
			}
			var pRef, pHet, pAlt driver.Value
			if r.GenoProbs != nil {
				pRef = float64(r.GenoProbs[3*i])
				pHet = float64(r.GenoProbs[3*i+1])
				pAlt = float64(r.GenoProbs[3*i+2])
			}

			if err := appender.AppendRow(
				r.Record.Chrom, r.Record.Pos, int32(i),
				allele1, allele2, pRef, pHet, pAlt,
			); err != nil {
				return fmt.Errorf("append genotype: %w", err)
			}
		}
	}

	return appender.Flush()
}

// newAppender opens a DuckDB appender for a table over the raw driver
// connection.
func newAppender(conn *sql.Conn, table string) (*goduckdb.Appender, error) {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return nil, fmt.Errorf("create %s appender: %w", table, err)
	}
	return appender, nil
}

// CountVariants returns the number of stored variant records.
func (s *Store) CountVariants() (int64, error) {
	var n int64
	err := s.db.QueryRow("SELECT count(*) FROM variants").Scan(&n)
	return n, err
}

// LookupVariants queries the stored records at a position.
func (s *Store) LookupVariants(chrom string, pos int64) ([]*vcf.Record, error) {
	rows, err := s.db.Query(`SELECT
		chrom, pos, id, ref, alt, ref_len, alt_len,
		qual, filter, info, format
		FROM variants
		WHERE chrom=? AND pos=?`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var records []*vcf.Record
	for rows.Next() {
		var rec vcf.Record
		if err := rows.Scan(
			&rec.Chrom, &rec.Pos, &rec.ID, &rec.Ref, &rec.Alt,
			&rec.RefLen, &rec.AltLen,
			&rec.Qual, &rec.Filter, &rec.Info, &rec.Format,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return records, nil
}

// GenotypeRow is one sample's stored genotype at a site. Matrix
// columns that were never decoded come back invalid.
type GenotypeRow struct {
	Sample  int
	Allele1 sql.NullInt16
	Allele2 sql.NullInt16
	PRef    sql.NullFloat64
	PHet    sql.NullFloat64
	PAlt    sql.NullFloat64
}

// LookupGenotypes queries the stored per-sample genotypes at a
// position, ordered by sample index.
func (s *Store) LookupGenotypes(chrom string, pos int64) ([]GenotypeRow, error) {
	rows, err := s.db.Query(`SELECT
		sample_idx, allele1, allele2, p_ref, p_het, p_alt
		FROM genotypes
		WHERE chrom=? AND pos=?
		ORDER BY sample_idx`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query genotypes: %w", err)
	}
	defer rows.Close()

	var genotypes []GenotypeRow
	for rows.Next() {
		var g GenotypeRow
		if err := rows.Scan(
			&g.Sample, &g.Allele1, &g.Allele2, &g.PRef, &g.PHet, &g.PAlt,
		); err != nil {
			return nil, fmt.Errorf("scan genotype: %w", err)
		}
		genotypes = append(genotypes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotypes: %w", err)
	}
	return genotypes, nil
}
