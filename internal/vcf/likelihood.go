package vcf

import (
	"math"
	"strconv"
	"strings"
)

// missingLikelihood is the log10 likelihood substituted for the "."
// missing marker: a uniform prior over the three genotype classes.
var missingLikelihood = math.Log10(1.0 / 3.0)

// decodeLikelihoods extracts the GL triplet of every sample token in
// the tail, converts it from log10 to linear scale, renormalizes it to
// sum to 1, and writes it into out, three entries per sample.
//
// A "." subfield maps to the uniform triplet. Any other unparseable
// subfield is fatal: likelihoods feed numeric computation, where a
// silent default would be dangerous. The renormalization is
// unconditional; source likelihoods are not guaranteed to be
// calibrated probabilities, and dividing by the sum yields the
// posterior under a uniform prior.
func (p *Parser) decodeLikelihoods(rec *Record, tail string, present bool, out []float32) error {
	glIdx := formatIndex(rec.Format, "GL")
	if glIdx < 0 {
		return p.errorf("FORMAT", -1,
			"format %q does not specify GL, cannot obtain genotype probabilities", rec.Format)
	}

	expect := p.header.NSamples() * 3
	if len(out) != expect {
		return p.errorf("", -1,
			"genotype probability buffer has length %d, want %d for %d samples",
			len(out), expect, p.header.NSamples())
	}

	n := 0
	sample := 0
	if present {
		sc := newFieldScanner(tail)
		for tok, ok := sc.Next(); ok; tok, ok = sc.Next() {
			sub, found := subfieldAt(tok, glIdx)
			if !found {
				sample++
				continue
			}

			likeHomRef, likeHet, likeHomAlt, err := parseLikelihoods(sub)
			if err != nil {
				return p.errorf("", sample,
					"failed to parse genotype likelihoods from %q", sub)
			}

			probHomRef := math.Pow(10.0, likeHomRef)
			probHet := math.Pow(10.0, likeHet)
			probHomAlt := math.Pow(10.0, likeHomAlt)

			if n+3 > expect {
				return p.errorf("", sample,
					"more genotype likelihoods per line than the %d declared samples",
					p.header.NSamples())
			}

			sum := probHomRef + probHet + probHomAlt
			out[n] = float32(probHomRef / sum)
			out[n+1] = float32(probHet / sum)
			out[n+2] = float32(probHomAlt / sum)
			n += 3
			sample++
		}
	}

	if n != expect {
		return p.errorf("", -1,
			"expected %d genotype likelihoods per line, got %d", expect, n)
	}
	return nil
}

// parseLikelihoods parses a "ref,het,alt" log10 triplet, substituting
// the uniform prior for the "." missing marker.
func parseLikelihoods(s string) (likeHomRef, likeHet, likeHomAlt float64, err error) {
	if s == "." {
		return missingLikelihood, missingLikelihood, missingLikelihood, nil
	}

	parts := strings.SplitN(s, ",", 4)
	if len(parts) < 3 {
		return 0, 0, 0, strconv.ErrSyntax
	}
	if likeHomRef, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, 0, err
	}
	if likeHet, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return 0, 0, 0, err
	}
	if likeHomAlt, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return 0, 0, 0, err
	}
	return likeHomRef, likeHet, likeHomAlt, nil
}
