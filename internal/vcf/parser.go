package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// fixedColumns are the nine well-known leading columns of every data
// line, in the order the #CHROM header line must declare them.
var fixedColumns = []string{
	"#CHROM", "POS", "ID", "REF", "ALT", "QUAL",
	"FILTER", "INFO", "FORMAT",
}

// Header describes the header block of a VCF stream. It is built once
// per stream and immutable afterwards.
type Header struct {
	Lines       int      // header lines consumed, including the #CHROM line
	MetaLines   []string // raw ## metadata lines
	SampleNames []string // tokens after FORMAT on the #CHROM line
}

// NSamples returns the number of samples declared by the header.
func (h *Header) NSamples() int {
	return len(h.SampleNames)
}

// Parser reads variant records from a VCF stream.
//
// The sample tail of each line is decoded only on request: Next fills
// whichever caller-owned matrices are non-nil. A Parser is not safe
// for concurrent use; the one-shot unphased-genotype notice is
// per-parser state.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
	logger     *zap.Logger

	warnedUnphased bool
}

// NewParser creates a new VCF parser for the given file. Supports
// plain, gzipped and bgzipped VCF; "-" reads from stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file, logger: zap.NewNop()}

	// Check for the gzip magic number (0x1f, 0x8b)
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g. stdin
// or an in-memory stream).
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{
		reader: bufio.NewReader(r),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger that receives decode warnings. The
// default discards them.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Header returns the decoded header, reading it from the stream on
// first use.
func (p *Parser) Header() (*Header, error) {
	if err := p.ensureHeader(); err != nil {
		return nil, err
	}
	return p.header, nil
}

// LineNumber returns the number of lines consumed so far.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and the underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

func (p *Parser) ensureHeader() error {
	if p.header != nil {
		return nil
	}
	return p.parseHeader()
}

// parseHeader consumes ## metadata lines until the #CHROM column line,
// validates the fixed column names, and derives the sample list. A
// stream without a #CHROM line has no usable schema and is fatal.
func (p *Parser) parseHeader() error {
	h := &Header{}
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		atEOF := err == io.EOF
		if atEOF && line == "" {
			return &ParseError{
				Line:    p.lineNumber,
				Sample:  -1,
				Message: "no #CHROM header line found",
			}
		}
		p.lineNumber++
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "##"):
			h.Lines++
			h.MetaLines = append(h.MetaLines, line)
		case strings.HasPrefix(line, "#CHROM"):
			h.Lines++
			if err := p.parseColumnLine(h, line); err != nil {
				return err
			}
			p.header = h
			return nil
		default:
			return &ParseError{
				Line:    p.lineNumber,
				Sample:  -1,
				Message: "expected #CHROM header line",
			}
		}

		if atEOF {
			return &ParseError{
				Line:    p.lineNumber,
				Sample:  -1,
				Message: "no #CHROM header line found",
			}
		}
	}
}

// parseColumnLine validates the #CHROM line token-by-token against the
// fixed column schema. Name mismatches only warn: decoding is
// positional, not name-based. Tokens past the fixed columns are sample
// names.
func (p *Parser) parseColumnLine(h *Header, line string) error {
	sc := newFieldScanner(line)
	tokNum := 0
	for tok, ok := sc.Next(); ok; tok, ok = sc.Next() {
		if tokNum < len(fixedColumns) {
			if tok != fixedColumns[tokNum] {
				p.logger.Warn("unexpected header column name",
					zap.Int("column", tokNum),
					zap.String("want", fixedColumns[tokNum]),
					zap.String("got", tok))
			}
		} else {
			h.SampleNames = append(h.SampleNames, tok)
		}
		tokNum++
	}
	if tokNum < len(fixedColumns) {
		return p.errorf("", -1, "header declares %d columns, want at least %d",
			tokNum, len(fixedColumns))
	}
	return nil
}

// Next reads the next variant record from the stream, returning
// nil, nil at end-of-stream.
//
// When haplotypes is non-nil it must have length 2*NSamples and is
// filled with each sample's allele pair (Missing = -1). When
// genoProbs is non-nil it must have length 3*NSamples and is filled
// with renormalized {hom-ref, het, hom-alt} probabilities. Both nil
// skips the sample tail entirely.
func (p *Parser) Next(genoProbs []float32, haplotypes []int8) (*Record, error) {
	if err := p.ensureHeader(); err != nil {
		return nil, err
	}

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		atEOF := err == io.EOF
		if atEOF && line == "" {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if atEOF {
				return nil, nil
			}
			continue // skip empty lines
		}

		return p.parseLine(line, genoProbs, haplotypes)
	}
}

// parseLine decodes the nine fixed columns and dispatches the sample
// tail to the requested genotype decoders.
func (p *Parser) parseLine(line string, genoProbs []float32, haplotypes []int8) (*Record, error) {
	sc := newFieldScanner(line)

	fields := make([]string, len(fixedColumns))
	for i := range fixedColumns {
		tok, ok := sc.Next()
		if !ok {
			return nil, p.errorf(fieldName(i), -1,
				"expected at least %d fields per line", len(fixedColumns))
		}
		fields[i] = tok
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, p.errorf("POS", -1, "invalid position %q", fields[1])
	}

	rec := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		RefLen: len(fields[3]),
		AltLen: len(fields[4]),
		Qual:   fields[5],
		Filter: fields[6],
		Info:   fields[7],
		Format: fields[8],
	}
	rec.Ref = p.boundAllele("REF", fields[3])
	rec.Alt = p.boundAllele("ALT", fields[4])

	// Both decoders consume their input destructively, so each gets
	// its own cursor over the same tail.
	tail, present := sc.rest()
	if haplotypes != nil {
		if err := p.decodeHaplotypes(rec, tail, present, haplotypes); err != nil {
			return nil, err
		}
	}
	if genoProbs != nil {
		if err := p.decodeLikelihoods(rec, tail, present, genoProbs); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// boundAllele caps allele text at MaxAlleleLen, warning when source
// text is lost. The record keeps the true length alongside.
func (p *Parser) boundAllele(field, allele string) string {
	if len(allele) <= MaxAlleleLen {
		return allele
	}
	p.logger.Warn("truncating long allele",
		zap.String("field", field),
		zap.Int("line", p.lineNumber),
		zap.Int("sourceLen", len(allele)),
		zap.Int("storedLen", MaxAlleleLen))
	return allele[:MaxAlleleLen]
}

// fieldName reports the fixed column name used in diagnostics.
func fieldName(i int) string {
	return strings.TrimPrefix(fixedColumns[i], "#")
}
