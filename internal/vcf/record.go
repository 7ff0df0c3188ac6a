// Package vcf decodes VCF streams into variant records and
// caller-owned genotype matrices.
package vcf

import "strings"

// Missing marks an allele call that is absent from the source or
// could not be represented in the haplotype matrix.
const Missing = -1

// MaxAlleleLen caps how much REF/ALT text is retained per record.
// Longer alleles are truncated with a warning; RefLen/AltLen always
// hold the true source length.
const MaxAlleleLen = 1024

// Record is a single decoded data line. The QUAL, FILTER, INFO and
// FORMAT columns are kept as opaque text. A Record is freshly
// allocated per line and never retained by the parser.
type Record struct {
	Chrom  string
	Pos    int64 // 1-based genomic position
	ID     string
	Ref    string // possibly truncated to MaxAlleleLen
	Alt    string // possibly truncated to MaxAlleleLen
	RefLen int    // true source length of the REF allele
	AltLen int    // true source length of the ALT allele
	Qual   string
	Filter string
	Info   string
	Format string // colon-delimited subfield tags for the sample tail
}

// Truncated reports whether either allele was cut to fit MaxAlleleLen.
func (r *Record) Truncated() bool {
	return r.RefLen != len(r.Ref) || r.AltLen != len(r.Alt)
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (r *Record) IsSNV() bool {
	return r.RefLen == 1 && r.AltLen == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (r *Record) IsIndel() bool {
	return r.RefLen != r.AltLen
}

// IsInsertion returns true if the variant is an insertion.
func (r *Record) IsInsertion() bool {
	return r.AltLen > r.RefLen
}

// IsDeletion returns true if the variant is a deletion.
func (r *Record) IsDeletion() bool {
	return r.RefLen > r.AltLen
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	if len(r.Chrom) > 3 && r.Chrom[:3] == "chr" {
		return r.Chrom[3:]
	}
	return r.Chrom
}

// SplitMultiAllelic splits a multi-allelic record into one record per
// ALT allele. Single-allele records are returned as-is.
func SplitMultiAllelic(r *Record) []*Record {
	alts := strings.Split(r.Alt, ",")
	if len(alts) == 1 {
		return []*Record{r}
	}

	records := make([]*Record, len(alts))
	for i, alt := range alts {
		c := *r
		c.Alt = alt
		c.AltLen = len(alt)
		records[i] = &c
	}

	return records
}
