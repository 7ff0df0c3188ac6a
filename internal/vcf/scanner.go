package vcf

// A lineScanner walks a line one delimited token at a time using an
// explicit cursor over an immutable string. Adjacent delimiters yield
// empty tokens; an exhausted scanner reports ok=false. Tokens cannot
// be re-read, but two scanners over the same string are independent.
type lineScanner struct {
	data   string
	delims string
	index  int
	done   bool
}

// newFieldScanner scans whitespace-delimited fields of a data line.
func newFieldScanner(s string) *lineScanner {
	return &lineScanner{data: s, delims: " \t"}
}

// newSubfieldScanner scans the colon-delimited subfields of a single
// sample token or FORMAT specifier.
func newSubfieldScanner(s string) *lineScanner {
	return &lineScanner{data: s, delims: ":"}
}

// Next returns the next token. ok is false once the scanner is
// exhausted.
func (sc *lineScanner) Next() (token string, ok bool) {
	if sc.done {
		return "", false
	}
	for end := sc.index; end < len(sc.data); end++ {
		c := sc.data[end]
		for i := 0; i < len(sc.delims); i++ {
			if c == sc.delims[i] {
				token = sc.data[sc.index:end]
				sc.index = end + 1
				return token, true
			}
		}
	}
	token = sc.data[sc.index:]
	sc.index = len(sc.data)
	sc.done = true
	return token, true
}

// rest returns the unconsumed remainder of the line. ok is false when
// the scanner has already run dry, which is distinct from an empty
// trailing token.
func (sc *lineScanner) rest() (string, bool) {
	if sc.done {
		return "", false
	}
	return sc.data[sc.index:], true
}
