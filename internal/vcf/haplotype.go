package vcf

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// decodeHaplotypes extracts the allele pair of every sample token in
// the tail and writes it into out, two entries per sample.
//
// Genotypes that fail to parse degrade to (Missing, Missing) with a
// warning. Allele values outside {0, 1} — copy-number polymorphisms
// and multi-allelic sites — also degrade to missing for both
// positions; the haplotype matrix cannot represent them. A count that
// disagrees with the declared sample number is fatal.
func (p *Parser) decodeHaplotypes(rec *Record, tail string, present bool, out []int8) error {
	gtIdx := formatIndex(rec.Format, "GT")
	if gtIdx < 0 {
		return p.errorf("FORMAT", -1,
			"format %q does not specify GT, cannot obtain haplotypes", rec.Format)
	}

	expect := p.header.NSamples() * 2
	if len(out) != expect {
		return p.errorf("", -1,
			"haplotype buffer has length %d, want %d for %d samples",
			len(out), expect, p.header.NSamples())
	}

	n := 0
	sample := 0
	if present {
		sc := newFieldScanner(tail)
		for tok, ok := sc.Next(); ok; tok, ok = sc.Next() {
			sub, found := subfieldAt(tok, gtIdx)
			if !found {
				sample++
				continue
			}

			hap1, hap2, phased, parsed := parseAllelePair(sub)
			if !parsed {
				p.logger.Warn("could not parse genotype",
					zap.String("genotype", sub),
					zap.Int("line", p.lineNumber),
					zap.Int("sample", sample))
				hap1, hap2 = Missing, Missing
			} else if !phased && !p.warnedUnphased {
				p.logger.Warn("some genotypes are unphased (delimited with '/' instead of '|')")
				p.warnedUnphased = true
			}

			if (hap1 != Missing && hap1 != 0 && hap1 != 1) ||
				(hap2 != Missing && hap2 != 0 && hap2 != 1) {
				p.logger.Warn("non-binary allele, setting genotype to missing",
					zap.String("genotype", sub),
					zap.Int("line", p.lineNumber),
					zap.Int("sample", sample))
				hap1, hap2 = Missing, Missing
			}

			if n+2 > expect {
				return p.errorf("", sample,
					"more genotypes per line than the %d declared samples",
					p.header.NSamples())
			}
			out[n] = int8(hap1)
			out[n+1] = int8(hap2)
			n += 2
			sample++
		}
	}

	if n != expect {
		return p.errorf("", -1,
			"expected %d genotype values per line, got %d", expect, n)
	}
	return nil
}

// parseAllelePair parses "a|b" (phased) or "a/b" (unphased) into two
// allele values.
func parseAllelePair(s string) (hap1, hap2 int, phased, ok bool) {
	phased = true
	a, b, found := strings.Cut(s, "|")
	if !found {
		phased = false
		a, b, found = strings.Cut(s, "/")
		if !found {
			return 0, 0, false, false
		}
	}

	hap1, err1 := strconv.Atoi(a)
	hap2, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false, false
	}
	return hap1, hap2, phased, true
}
