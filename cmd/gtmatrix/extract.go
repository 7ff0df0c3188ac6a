package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/variantlab/gtmatrix/internal/output"
	"github.com/variantlab/gtmatrix/internal/store"
	"github.com/variantlab/gtmatrix/internal/vcf"
)

// storeBatchSize is how many decoded records are buffered before a
// DuckDB appender flush.
const storeBatchSize = 1024

func newExtractCmd() *cobra.Command {
	var (
		hapsPath  string
		probsPath string
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "extract <input.vcf[.gz]>",
		Short: "Stream a VCF and write genotype matrices",
		Long: `Decode a VCF stream into per-sample genotype matrices.

The haplotype matrix holds two allele calls per sample (GT subfield,
missing as -1); the probability matrix holds three renormalized
genotype probabilities per sample (GL subfield). Each matrix is only
decoded when an output for it is requested.`,
		Example: `  # Haplotype matrix only
  gtmatrix extract --haplotypes haps.tsv input.vcf.gz

  # Both matrices plus a queryable DuckDB database
  gtmatrix extract --haplotypes haps.tsv --probs probs.tsv --db calls.duckdb input.vcf

  # Decode from stdin, report record count only
  cat input.vcf | gtmatrix extract -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], hapsPath, probsPath, dbPath)
		},
	}

	cmd.Flags().StringVar(&hapsPath, "haplotypes", "", "Write haplotype matrix to file")
	cmd.Flags().StringVar(&probsPath, "probs", "", "Write genotype probability matrix to file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Write decoded records to a DuckDB database, along with whichever matrices are being decoded")

	return cmd
}

func runExtract(input, hapsPath, probsPath, dbPath string) error {
	parser, err := vcf.NewParser(input)
	if err != nil {
		return err
	}
	defer parser.Close()

	logger := zap.NewNop()
	if viper.GetBool("verbose") {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
	}
	parser.SetLogger(logger)

	header, err := parser.Header()
	if err != nil {
		return err
	}
	nsamples := header.NSamples()

	wantHaps := hapsPath != ""
	wantProbs := probsPath != ""

	var hapsWriter *output.HaplotypeWriter
	if hapsPath != "" {
		f, err := os.Create(hapsPath)
		if err != nil {
			return fmt.Errorf("create haplotype output: %w", err)
		}
		defer f.Close()
		hapsWriter = output.NewHaplotypeWriter(f)
		if err := hapsWriter.WriteHeader(header.SampleNames); err != nil {
			return fmt.Errorf("write haplotype header: %w", err)
		}
	}

	var probsWriter *output.ProbabilityWriter
	if probsPath != "" {
		f, err := os.Create(probsPath)
		if err != nil {
			return fmt.Errorf("create probability output: %w", err)
		}
		defer f.Close()
		probsWriter = output.NewProbabilityWriter(f)
		if err := probsWriter.WriteHeader(header.SampleNames); err != nil {
			return fmt.Errorf("write probability header: %w", err)
		}
	}

	var db *store.Store
	if dbPath != "" {
		db, err = store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var haplotypes []int8
	var genoProbs []float32
	if wantHaps {
		haplotypes = make([]int8, nsamples*2)
	}
	if wantProbs {
		genoProbs = make([]float32, nsamples*3)
	}

	var batch []store.Result
	count := 0
	for {
		rec, err := parser.Next(genoProbs, haplotypes)
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		count++

		if hapsWriter != nil {
			if err := hapsWriter.Write(rec, haplotypes); err != nil {
				return fmt.Errorf("write haplotypes: %w", err)
			}
		}
		if probsWriter != nil {
			if err := probsWriter.Write(rec, genoProbs); err != nil {
				return fmt.Errorf("write probabilities: %w", err)
			}
		}

		if db != nil {
			// The decode buffers are reused on the next call.
			batch = append(batch, store.Result{
				Record:     rec,
				Haplotypes: append([]int8(nil), haplotypes...),
				GenoProbs:  append([]float32(nil), genoProbs...),
			})
			if len(batch) >= storeBatchSize {
				if err := db.WriteResults(batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}

	if db != nil {
		if err := db.WriteResults(batch); err != nil {
			return err
		}
	}
	if hapsWriter != nil {
		if err := hapsWriter.Flush(); err != nil {
			return fmt.Errorf("flush haplotypes: %w", err)
		}
	}
	if probsWriter != nil {
		if err := probsWriter.Flush(); err != nil {
			return fmt.Errorf("flush probabilities: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "decoded %d records for %d samples\n", count, nsamples)
	return nil
}
