package postfixnotation

import "errors"

var (
	ErrInvalidCharacter         = errors.New("invalid character")
	ErrUnbalancedParentheses    = errors.New("unbalanced parentheses")
	ErrDivisionByZero           = errors.New("division by zero")
	ErrInvalidFactorialArgument = errors.New("invalid factorial argument")
	ErrResultOverflow           = errors.New("result overflow")
	// ErrMalformedExpression covers empty input, missing operands and
	// operands left over after reduction.
	ErrMalformedExpression = errors.New("malformed expression")
)
