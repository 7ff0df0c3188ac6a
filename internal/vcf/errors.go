package vcf

import "fmt"

// ParseError represents a fatal decode failure with enough context to
// point at the offending line, fixed field, and sample column.
type ParseError struct {
	Line    int
	Field   string // fixed column name, empty when not field-scoped
	Sample  int    // zero-based sample index, -1 when not sample-scoped
	Message string
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("vcf parse error at line %d", e.Line)
	if e.Field != "" {
		s += ", field " + e.Field
	}
	if e.Sample >= 0 {
		s += fmt.Sprintf(", sample %d", e.Sample)
	}
	return s + ": " + e.Message
}

// errorf builds a ParseError for the line currently being decoded.
func (p *Parser) errorf(field string, sample int, format string, args ...any) *ParseError {
	return &ParseError{
		Line:    p.lineNumber,
		Field:   field,
		Sample:  sample,
		Message: fmt.Sprintf(format, args...),
	}
}
