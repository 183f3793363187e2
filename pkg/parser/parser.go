// Package parser implements the expression parser.
//
// The parser uses a hand-written recursive descent approach (Pratt's
// "Top Down Operator Precedence") for maximum performance and control,
// and provides detailed error reporting with source positions.
//
// # Architecture
//
// The parser consists of two main components:
//   - Lexer: Tokenizes the input expression into a stream of tokens
//   - Parser: Builds an Abstract Syntax Tree (AST) from tokens
//
// # Example
//
//	expr, err := parser.Parse("rain * 0.9 + melt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
//
// # Performance
//
// The parser is optimized for:
//   - Low memory allocation (arena-allocated AST nodes)
//   - Fast tokenization
//   - Minimal garbage collection pressure
package parser

import (
	"github.com/hydrokit/flowexpr/pkg/functions"
	"github.com/hydrokit/flowexpr/pkg/types"
)

// DefaultMaxDepth is the nesting depth limit applied when no
// WithMaxDepth option is given.
const DefaultMaxDepth = 256

// Parse parses an expression and returns the compiled Expression.
//
// The function tokenizes the input, builds an AST, resolves function calls
// against the registry, and validates the syntax. If parsing fails, it
// returns a *types.Error with position information.
//
// Example:
//
//	expr, err := parser.Parse("max(rain, 0)")
//	if err != nil {
//	    var perr *types.Error
//	    errors.As(err, &perr)
//	    fmt.Printf("parse error at position %d\n", perr.Position)
//	    return
//	}
func Parse(source string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits nesting depth to prevent stack overflow.
	MaxDepth int
	// Registry resolves function names; defaults to functions.Default().
	Registry *functions.Registry
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// WithFunctions sets the function registry used to resolve calls.
func WithFunctions(registry *functions.Registry) CompileOption {
	return func(opts *CompileOptions) {
		opts.Registry = registry
	}
}
