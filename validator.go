package flowexpr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hydrokit/flowexpr/pkg/cache"
	"github.com/hydrokit/flowexpr/pkg/functions"
	"github.com/hydrokit/flowexpr/pkg/parser"
	"github.com/hydrokit/flowexpr/pkg/types"
)

// Fast-path patterns. Sources matching one of these are trivially valid and
// skip the lexer and parser entirely. The patterns must stay consistent with
// the grammar: a bare number parses to a constant, a bare dotted reference
// to a single variable node.
var (
	numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
	identPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// Diagnostic describes one validation error with its source location.
type Diagnostic struct {
	Code       types.ErrorCode
	Message    string
	Position   int    // Byte offset in the source, or -1 when unknown
	Line       int    // 1-based
	Column     int    // 1-based byte column
	Suggestion string // Closest known function name, when applicable
}

// String formats the diagnostic for display.
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

// Result is the outcome of validating one expression source.
type Result struct {
	// Valid is true when the source parses.
	Valid bool
	// Variables lists the distinct variable references, sorted.
	Variables []string
	// Warnings lists non-fatal diagnostics, such as division by a zero constant.
	Warnings []string
	// Err describes the failure when Valid is false.
	Err *Diagnostic
}

// Validator checks expression sources and reports structured diagnostics.
//
// Parse outcomes, including failures, are cached in a bounded LRU keyed by
// the exact source text, so repeated validation of the same source (as an
// editor produces on every keystroke) costs a single map lookup.
//
// Safe for concurrent use by multiple goroutines.
type Validator struct {
	cache    *cache.Cache
	registry *functions.Registry
	maxDepth int
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithCacheCapacity sets the maximum number of cached parse outcomes.
func WithCacheCapacity(n int) ValidatorOption {
	return func(v *Validator) {
		v.cache = cache.New(n)
	}
}

// WithValidatorFunctions sets the function registry expressions are
// resolved against.
func WithValidatorFunctions(registry *functions.Registry) ValidatorOption {
	return func(v *Validator) {
		v.registry = registry
	}
}

// WithValidatorMaxDepth sets the maximum expression nesting depth.
func WithValidatorMaxDepth(depth int) ValidatorOption {
	return func(v *Validator) {
		v.maxDepth = depth
	}
}

// NewValidator creates a validator with a default-capacity cache and the
// built-in function registry.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		registry: functions.Default(),
		maxDepth: parser.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.cache == nil {
		v.cache = cache.New(cache.DefaultCapacity)
	}
	return v
}

// Validate checks one expression source and returns a structured result.
func (v *Validator) Validate(source string) Result {
	trimmed := strings.TrimSpace(source)

	if trimmed == "" {
		return Result{Err: v.diagnostic(source, types.NewError(types.ErrEmptyExpression, "Empty expression", 0))}
	}

	// Fast paths: bare numeric constants and bare variable references are
	// by far the most common model inputs and need no parse.
	if numberPattern.MatchString(trimmed) {
		return Result{Valid: true}
	}
	if identPattern.MatchString(trimmed) {
		return Result{Valid: true, Variables: []string{trimmed}}
	}

	out := v.outcome(source)
	if out.Err != nil {
		var perr *types.Error
		if e, ok := out.Err.(*types.Error); ok {
			perr = e
		} else {
			perr = types.NewError(types.ErrUnexpectedToken, out.Err.Error(), -1)
		}
		return Result{Err: v.diagnostic(source, perr)}
	}

	return Result{
		Valid:     true,
		Variables: out.Expr.Variables(),
		Warnings:  out.Expr.Warnings(),
	}
}

// Load returns the compiled expression for source, parsing it if it is not
// already cached. Unlike Validate it never takes the fast paths, so the
// returned expression is always a full AST ready for evaluation.
func (v *Validator) Load(source string) (*types.Expression, error) {
	out := v.outcome(source)
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Expr, nil
}

// ClearCache drops all cached parse outcomes. Call after swapping the
// function registry for one with different names or arities.
func (v *Validator) ClearCache() {
	v.cache.Clear()
}

// CacheLen returns the number of cached parse outcomes.
func (v *Validator) CacheLen() int {
	return v.cache.Len()
}

func (v *Validator) outcome(source string) *cache.Outcome {
	return v.cache.GetOrParse(source, func() (*types.Expression, error) {
		return parser.Parse(source,
			parser.WithFunctions(v.registry),
			parser.WithMaxDepth(v.maxDepth))
	})
}

func (v *Validator) diagnostic(source string, err *types.Error) *Diagnostic {
	line, col := lineColumn(source, err.Position)
	return &Diagnostic{
		Code:       err.Code,
		Message:    err.Message,
		Position:   err.Position,
		Line:       line,
		Column:     col,
		Suggestion: err.Suggestion,
	}
}

// lineColumn converts a byte offset into 1-based line and column numbers.
// A negative or out-of-range offset maps to the end of the source.
func lineColumn(source string, pos int) (line, col int) {
	if pos < 0 || pos > len(source) {
		pos = len(source)
	}
	line, col = 1, 1
	for _, b := range []byte(source[:pos]) {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
