// Package introspect defines the AST-introspection collaborator contract
// (spec §6): resolving the innermost enclosing symbol (function or class)
// at a given file/line so diff hunks can be attributed to semantic units.
//
// This package ships only the interface and a trivial no-op resolver; a
// real implementation (language server, tree-sitter, etc.) is an external
// collaborator per spec §1/§6.
package introspect

import "context"

// SymbolResolver calls into an external AST-introspection service.
// get_symbols_at_line returns the innermost-first list of enclosing named
// symbols. Any error, or an empty list, means "no symbol" — callers must
// treat both uniformly and never fail because of it.
type SymbolResolver interface {
	SymbolsAtLine(ctx context.Context, filePath string, line int) ([]string, error)
}

// NoopResolver always reports "no symbol", useful as a default when no
// introspection service is configured.
type NoopResolver struct{}

func (NoopResolver) SymbolsAtLine(context.Context, string, int) ([]string, error) {
	return nil, nil
}

// Innermost returns the first (innermost) symbol name, or "" if the
// resolver returned no symbols or an error. This is the helper the VCS
// engine uses so it never has to special-case resolver failures.
func Innermost(ctx context.Context, r SymbolResolver, filePath string, line int) string {
	if r == nil {
		return ""
	}
	symbols, err := r.SymbolsAtLine(ctx, filePath, line)
	if err != nil || len(symbols) == 0 {
		return ""
	}
	return symbols[0]
}
