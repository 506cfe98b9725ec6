package validator

import (
	"context"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
)

// SyntaxValidator parses each target file with the language's AST facility
// and reports parse errors as ERROR-severity issues carrying line/column
// from the parse exception. The default ParseFunc understands Go source;
// callers targeting another language supply their own via WithParseFunc.
type SyntaxValidator struct {
	parse ParseFunc
}

// ParseFunc attempts to parse src (the file's contents) and returns the
// parse errors found, if any. It must never panic.
type ParseFunc func(filename string, src []byte) []Issue

// SyntaxOption configures a SyntaxValidator.
type SyntaxOption func(*SyntaxValidator)

// WithParseFunc overrides the default go/parser-backed ParseFunc.
func WithParseFunc(fn ParseFunc) SyntaxOption {
	return func(v *SyntaxValidator) { v.parse = fn }
}

// NewSyntaxValidator returns a SyntaxValidator using go/parser by default.
func NewSyntaxValidator(opts ...SyntaxOption) *SyntaxValidator {
	v := &SyntaxValidator{parse: parseGoSyntax}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *SyntaxValidator) Name() string { return "syntax" }

func (v *SyntaxValidator) Validate(_ context.Context, path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	issues := v.parse(path, src)
	return Result{Success: len(issues) == 0, Issues: issues}, nil
}

// parseGoSyntax uses go/parser in AllErrors mode so a single syntax error
// does not hide the rest, converting each scanner.Error into an Issue with
// its reported line/column.
func parseGoSyntax(filename string, src []byte) []Issue {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, filename, src, parser.AllErrors)
	if err == nil {
		return nil
	}

	var issues []Issue
	if list, ok := err.(scanner.ErrorList); ok {
		for _, e := range list {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  e.Msg,
				File:     filename,
				Line:     e.Pos.Line,
				Column:   e.Pos.Column,
				Source:   "syntax",
			})
		}
		return issues
	}
	return []Issue{{Severity: SeverityError, Message: err.Error(), File: filename, Source: "syntax"}}
}
