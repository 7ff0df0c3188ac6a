package vcf

// formatIndex returns the zero-based position of tag in a
// colon-delimited FORMAT specifier (e.g. "GT:DP:GL"), or -1 when the
// tag is absent. Only exact matches count.
func formatIndex(format, tag string) int {
	sc := newSubfieldScanner(format)
	for i := 0; ; i++ {
		tok, ok := sc.Next()
		if !ok {
			return -1
		}
		if tok == tag {
			return i
		}
	}
}

// subfieldAt returns the colon-delimited subfield of a sample token at
// the given index. ok is false when the token has fewer subfields.
func subfieldAt(token string, idx int) (string, bool) {
	sc := newSubfieldScanner(token)
	for i := 0; ; i++ {
		tok, ok := sc.Next()
		if !ok {
			return "", false
		}
		if i == idx {
			return tok, true
		}
	}
}
