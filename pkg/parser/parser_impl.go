package parser

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hydrokit/flowexpr/pkg/functions"
	"github.com/hydrokit/flowexpr/pkg/types"
)

// Parser implements a recursive descent parser for expressions.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer    *Lexer
	current  Token
	prev     Token
	arena    *types.NodeArena
	vars     map[string]struct{}
	warnings []string
	depth    int
	opts     CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
		Registry: functions.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.Registry == nil {
		options.Registry = functions.Default()
	}

	p := &Parser{
		lexer: NewLexer(input),
		arena: types.NewNodeArena(),
		vars:  make(map[string]struct{}),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire expression and returns the compiled Expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrEmptyExpression, "Empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenError {
		return nil, asTypesError(p.lexer.Error())
	}
	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected token after expression: %s", p.current.Value))
	}

	vars := make([]string, 0, len(p.vars))
	for name := range p.vars {
		vars = append(vars, name)
	}
	sort.Strings(vars)

	return types.NewExpression(node, p.lexer.input, vars, p.warnings), nil
}

// Operator precedence table (binding power).
// Higher values bind more tightly. The rejected operators (&&, ||, =)
// carry the precedence of their corrected form so that the parser reaches
// parseInfix and can emit a corrective error instead of a generic one.
var precedence = map[TokenType]int{
	TokenOr:           10, // |
	TokenOrOr:         10,
	TokenAnd:          20, // &
	TokenAndAnd:       20,
	TokenEqual:        30, // ==
	TokenNotEqual:     30, // !=
	TokenAssign:       30,
	TokenLess:         40, // <
	TokenLessEqual:    40, // <=
	TokenGreater:      40, // >
	TokenGreaterEqual: 40, // >=
	TokenPlus:         50, // +
	TokenMinus:        50, // -
	TokenMult:         60, // *
	TokenDiv:          60, // /
	TokenMod:          60, // %
	TokenPow:          70, // ^ (right-associative)
}

// unaryPrecedence is the binding power of prefix operators. It equals the
// power operator's precedence so that -x^2 parses as (-x)^2 while the
// operand of ^ may itself be a unary expression (x^-y).
const unaryPrecedence = 70

// binaryOps maps operator tokens to their AST operator.
var binaryOps = map[TokenType]types.BinaryOp{
	TokenPlus:         types.OpAdd,
	TokenMinus:        types.OpSub,
	TokenMult:         types.OpMul,
	TokenDiv:          types.OpDiv,
	TokenMod:          types.OpMod,
	TokenPow:          types.OpPow,
	TokenEqual:        types.OpEqual,
	TokenNotEqual:     types.OpNotEqual,
	TokenLess:         types.OpLess,
	TokenLessEqual:    types.OpLessEqual,
	TokenGreater:      types.OpGreater,
	TokenGreaterEqual: types.OpGreaterEqual,
	TokenAnd:          types.OpAnd,
	TokenOr:           types.OpOr,
}

// getPrecedence returns the precedence of a token type.
func (p *Parser) getPrecedence(tt TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) *types.Error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrExpressionTooDeep,
			fmt.Sprintf("Expression nesting exceeds maximum depth of %d", p.opts.MaxDepth))
	}

	// Parse prefix expression (nud - null denotation)
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
// These are expressions that don't require a left-hand side.
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenIdent:
		return p.parseIdent()
	case TokenMinus:
		return p.parseUnary(types.OpNegate)
	case TokenPlus:
		return p.parseUnary(types.OpPlus)
	case TokenNot:
		return p.parseUnary(types.OpNot)
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenParenClose:
		return nil, p.error(types.ErrUnbalancedParens, "Unmatched ')'")
	case TokenEOF:
		if isOperatorToken(p.prev.Type) {
			return nil, p.error(types.ErrUnexpectedToken,
				fmt.Sprintf("Expected operand after operator '%s'", p.prev.Value))
		}
		return nil, p.error(types.ErrUnexpectedToken, "Unexpected end of expression")
	case TokenError:
		return nil, asTypesError(p.lexer.Error())
	default:
		return nil, p.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected token: %s", token.Value))
	}
}

// parseInfix parses an infix expression (led - left denotation).
// These are expressions that require a left-hand side.
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenAndAnd:
		return nil, p.error(types.ErrInvalidOperator, "Invalid operator '&&': use '&' for logical AND")
	case TokenOrOr:
		return nil, p.error(types.ErrInvalidOperator, "Invalid operator '||': use '|' for logical OR")
	case TokenAssign:
		return nil, p.error(types.ErrInvalidOperator, "Invalid operator '=': use '==' for equality comparison")
	default:
		if _, ok := binaryOps[token.Type]; ok {
			return p.parseBinaryOp(left)
		}
		return nil, p.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected infix token: %s", token.Value))
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrMalformedNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node := p.arena.Alloc(types.NodeConstant, p.current.Position)
	node.NumValue = val
	p.advance()
	return node, nil
}

// parseIdent parses a variable reference or, when followed by '(', a
// function call. Anything not followed by '(' is a variable, including
// names that happen to match a registered function.
func (p *Parser) parseIdent() (*types.ASTNode, error) {
	name := p.current.Value
	pos := p.current.Position
	p.advance()

	if p.current.Type == TokenParenOpen {
		return p.parseCall(name, pos)
	}

	p.vars[name] = struct{}{}
	node := p.arena.Alloc(types.NodeVariable, pos)
	node.Name = name
	return node, nil
}

// parseUnary parses a prefix operator expression.
func (p *Parser) parseUnary(op types.UnaryOp) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	operand, err := p.parseExpression(unaryPrecedence)
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeUnary, pos)
	node.UnaryOp = op
	node.Operand = operand
	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenParenClose {
		return nil, p.error(types.ErrUnbalancedParens, "Unmatched '(': expected ')'")
	}
	p.advance() // Skip ')'

	return expr, nil
}

// parseBinaryOp parses a binary operator expression.
// The power operator is right-associative; all others are left-associative.
func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	if op.Type == TokenPow {
		prec--
	}
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	if op.Type == TokenDiv && right.Type == types.NodeConstant && right.NumValue == 0 {
		p.warnings = append(p.warnings,
			fmt.Sprintf("Division by zero constant at position %d", op.Position))
	}

	node := p.arena.Alloc(types.NodeBinary, op.Position)
	node.BinaryOp = binaryOps[op.Type]
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseCall parses a function call. The name has been consumed and the
// current token is '('. The call is resolved against the registry and its
// arity checked here, so evaluation never sees an unknown name or a wrong
// argument count for expressions built by this parser.
func (p *Parser) parseCall(name string, pos int) (*types.ASTNode, error) {
	p.advance() // Skip '('

	node := p.arena.Alloc(types.NodeCall, pos)
	node.Name = name

	if p.current.Type != TokenParenClose {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			node.Arguments = append(node.Arguments, arg)

			if p.current.Type == TokenComma {
				p.advance()
				continue
			}
			break
		}
	}

	if p.current.Type != TokenParenClose {
		return nil, p.error(types.ErrUnbalancedParens,
			fmt.Sprintf("Unmatched '(' in call to '%s': expected ')'", name))
	}
	p.advance() // Skip ')'

	spec, ok := p.opts.Registry.Lookup(name)
	if !ok {
		msg := fmt.Sprintf("Unknown function '%s'", name)
		err := types.NewError(types.ErrUnknownFunction, msg, pos).WithToken(name)
		if nearest := p.opts.Registry.Nearest(name); nearest != "" {
			err.Message = fmt.Sprintf("%s. Did you mean '%s'?", msg, nearest)
			err.Suggestion = nearest
		}
		return nil, err
	}

	got := len(node.Arguments)
	if got < spec.MinArgs || (spec.MaxArgs != functions.Variadic && got > spec.MaxArgs) {
		return nil, types.NewError(types.ErrArityMismatch,
			arityMessage(spec, got), pos).WithToken(name)
	}

	return node, nil
}

// arityMessage formats the expected-vs-actual argument count for a call.
func arityMessage(spec *functions.Spec, got int) string {
	if spec.MaxArgs == functions.Variadic {
		return fmt.Sprintf("Function '%s' expects at least %d %s, got %d",
			spec.Name, spec.MinArgs, plural(spec.MinArgs, "argument"), got)
	}
	if spec.MinArgs == spec.MaxArgs {
		return fmt.Sprintf("Function '%s' expects %d %s, got %d",
			spec.Name, spec.MinArgs, plural(spec.MinArgs, "argument"), got)
	}
	return fmt.Sprintf("Function '%s' expects between %d and %d arguments, got %d",
		spec.Name, spec.MinArgs, spec.MaxArgs, got)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// isOperatorToken reports whether tt is a prefix or infix operator token.
func isOperatorToken(tt TokenType) bool {
	if _, ok := binaryOps[tt]; ok {
		return true
	}
	switch tt {
	case TokenNot, TokenAndAnd, TokenOrOr, TokenAssign:
		return true
	default:
		return false
	}
}

// asTypesError normalizes a lexer error for return from the parser.
func asTypesError(err error) error {
	if err == nil {
		return types.NewError(types.ErrInvalidCharacter, "Lexical error", -1)
	}
	return err
}
