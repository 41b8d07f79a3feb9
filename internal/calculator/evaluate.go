package calculator

import (
	"errors"
	"strconv"
	"strings"

	postfixnotation "fincalc/pkg/postfix_notation"
)

// Evaluate resolves a trailing percentage and runs the postfix pipeline.
func Evaluate(expression string, opts postfixnotation.Options) (float64, error) {
	if resolved, ok := ResolvePercent(expression); ok {
		expression = resolved
	}
	return postfixnotation.Calc(strings.TrimSpace(expression), opts)
}

// FormatResult renders a committed value in the plain form that is fed back
// into the expression when the user chains off a result.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ErrorText is what the result region shows for any failed evaluation.
const ErrorText = "Error"

// Message returns the short user-facing description of an evaluation failure.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, postfixnotation.ErrInvalidCharacter):
		return "Invalid input"
	case errors.Is(err, postfixnotation.ErrUnbalancedParentheses):
		return "Mismatched parentheses"
	case errors.Is(err, postfixnotation.ErrDivisionByZero):
		return "Cannot divide by zero"
	case errors.Is(err, postfixnotation.ErrInvalidFactorialArgument):
		return "Invalid factorial"
	case errors.Is(err, postfixnotation.ErrResultOverflow):
		return "Result too large"
	default:
		return ErrorText
	}
}
