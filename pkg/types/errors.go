package types

import (
	"fmt"
	"strings"
)

// ErrorCode classifies an expression error.
type ErrorCode string

// Error codes. P0xxx codes are produced while parsing, E1xxx codes while
// evaluating. The two families are disjoint: once an expression parses, none
// of the P0xxx codes can occur, and vice versa.
const (
	// P01xx: Lexical errors
	ErrInvalidCharacter   ErrorCode = "P0101"
	ErrMalformedNumber    ErrorCode = "P0102"
	ErrMalformedReference ErrorCode = "P0103"

	// P02xx: Syntax errors
	ErrEmptyExpression  ErrorCode = "P0201"
	ErrUnexpectedToken  ErrorCode = "P0202"
	ErrUnbalancedParens ErrorCode = "P0203"
	ErrInvalidOperator  ErrorCode = "P0204"

	// P03xx: Function resolution errors
	ErrUnknownFunction ErrorCode = "P0301"
	ErrArityMismatch   ErrorCode = "P0302"

	// P04xx: Resource limits
	ErrExpressionTooDeep ErrorCode = "P0401"

	// E1xxx: Evaluation errors
	ErrVariableNotFound  ErrorCode = "E1001"
	ErrDivisionByZero    ErrorCode = "E1002"
	ErrMathDomain        ErrorCode = "E1003"
	ErrEvaluationTooDeep ErrorCode = "E1004"
	ErrUndefinedFunction ErrorCode = "E1005"
	ErrInvalidArguments  ErrorCode = "E1006"
)

// ParseTime reports whether the code belongs to the parse-time family.
func (c ErrorCode) ParseTime() bool {
	return strings.HasPrefix(string(c), "P")
}

// Error represents a structured expression error.
type Error struct {
	Code       ErrorCode
	Message    string
	Position   int    // Byte offset in the source, or -1 when unknown
	Token      string // Offending token text, if any
	Suggestion string // Closest known function name (ErrUnknownFunction only)
	Err        error
}

// NewError creates a new expression error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithSuggestion attaches a "did you mean" candidate.
func (e *Error) WithSuggestion(name string) *Error {
	e.Suggestion = name
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
