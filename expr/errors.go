package expr

import (
	"fmt"
	"strings"
)

// Code classifies compile errors into a stable, machine-readable set.
type Code string

const (
	CodeLex                  Code = "E001"
	CodeParse                Code = "E002"
	CodeUnknownVariable      Code = "E101"
	CodeArityMismatch        Code = "E102"
	CodeNoApplicableOverload Code = "E103"
	CodeAmbiguousPromotion   Code = "E104"
	CodeUnsupportedOperator  Code = "E201"
	CodeDepthLimitExceeded   Code = "E301"
)

// SourceError represents an error with source location information.
type SourceError struct {
	Code    Code
	Message string
	Span    Span
	Source  string // original source text, for context display
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Span.Start.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Span.Start.Line, e.Span.Start.Column, e.Code, e.Message)
}

// FormatWithContext returns the error message with source context.
// Shows the problematic line with a caret pointing to the error location.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Span.Start.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Span.Start.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error[%s]: %s\n", e.Code, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// NewError creates a new SourceError.
func NewError(code Code, message string, span Span, source string) *SourceError {
	return &SourceError{
		Code:    code,
		Message: message,
		Span:    span,
		Source:  source,
	}
}

func newErrorf(code Code, span Span, source string, format string, args ...interface{}) *SourceError {
	return &SourceError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Source:  source,
	}
}
