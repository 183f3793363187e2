// Package types defines the core type system for flowexpr.
//
// This package contains type definitions for:
//   - Expression: Compiled arithmetic expressions
//   - ASTNode: Abstract Syntax Tree nodes
//   - BinaryOp / UnaryOp: Operator identifiers
//   - Error types: Structured errors with codes
package types

// Expression represents a compiled arithmetic expression.
//
// An Expression is produced by the parser and can be evaluated any number of
// times against different variable bindings. It is immutable after parsing
// and safe for concurrent use by multiple goroutines.
type Expression struct {
	ast       *ASTNode
	source    string
	variables []string // sorted, deduplicated
	warnings  []string
}

// NewExpression creates a new Expression from an AST.
// variables must be sorted and deduplicated by the caller.
func NewExpression(ast *ASTNode, source string, variables []string, warnings []string) *Expression {
	return &Expression{
		ast:       ast,
		source:    source,
		variables: variables,
		warnings:  warnings,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// Variables returns the distinct variable names referenced by the
// expression, sorted lexicographically. The returned slice is a copy.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)
	return out
}

// Warnings returns non-fatal diagnostics collected during parsing,
// such as division by a zero constant. The returned slice is a copy.
func (e *Expression) Warnings() []string {
	if len(e.warnings) == 0 {
		return nil
	}
	out := make([]string, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// SingleVariable returns the variable name and true when the whole
// expression is a bare variable reference, e.g. "data.rain.mm".
// Callers can use this to skip evaluation entirely.
func (e *Expression) SingleVariable() (string, bool) {
	if e.ast != nil && e.ast.Type == NodeVariable {
		return e.ast.Name, true
	}
	return "", false
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
