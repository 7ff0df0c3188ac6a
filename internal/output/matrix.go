// Package output writes decoded genotype matrices in tab-delimited
// form.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/variantlab/gtmatrix/internal/vcf"
)

// HaplotypeWriter writes one row per variant: the five site columns
// followed by two allele calls per sample. Missing calls are written
// as -1.
type HaplotypeWriter struct {
	w *bufio.Writer
}

// NewHaplotypeWriter creates a haplotype matrix writer.
func NewHaplotypeWriter(w io.Writer) *HaplotypeWriter {
	return &HaplotypeWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the column header line, deriving two allele
// columns per sample name.
func (hw *HaplotypeWriter) WriteHeader(samples []string) error {
	cols := siteColumns()
	for _, s := range samples {
		cols = append(cols, s+".a", s+".b")
	}
	_, err := hw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes one variant row.
func (hw *HaplotypeWriter) Write(rec *vcf.Record, haplotypes []int8) error {
	cols := siteValues(rec)
	for _, h := range haplotypes {
		cols = append(cols, strconv.Itoa(int(h)))
	}
	_, err := hw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Flush flushes any buffered rows to the underlying writer.
func (hw *HaplotypeWriter) Flush() error {
	return hw.w.Flush()
}

// ProbabilityWriter writes one row per variant: the five site columns
// followed by the renormalized {hom-ref, het, hom-alt} triplet per
// sample.
type ProbabilityWriter struct {
	w *bufio.Writer
}

// NewProbabilityWriter creates a genotype probability matrix writer.
func NewProbabilityWriter(w io.Writer) *ProbabilityWriter {
	return &ProbabilityWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the column header line, deriving three genotype
// class columns per sample name.
func (pw *ProbabilityWriter) WriteHeader(samples []string) error {
	cols := siteColumns()
	for _, s := range samples {
		cols = append(cols, s+".ref", s+".het", s+".alt")
	}
	_, err := pw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes one variant row.
func (pw *ProbabilityWriter) Write(rec *vcf.Record, genoProbs []float32) error {
	cols := siteValues(rec)
	for _, p := range genoProbs {
		cols = append(cols, strconv.FormatFloat(float64(p), 'f', 6, 32))
	}
	_, err := pw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Flush flushes any buffered rows to the underlying writer.
func (pw *ProbabilityWriter) Flush() error {
	return pw.w.Flush()
}

func siteColumns() []string {
	return []string{"#CHROM", "POS", "ID", "REF", "ALT"}
}

func siteValues(rec *vcf.Record) []string {
	return []string{
		rec.Chrom,
		strconv.FormatInt(rec.Pos, 10),
		rec.ID,
		rec.Ref,
		rec.Alt,
	}
}
