package postfixnotation_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postfixnotation "fincalc/pkg/postfix_notation"
)

var scientific = postfixnotation.Options{Grammar: postfixnotation.Scientific}

func postfixString(t *testing.T, expression string, grammar postfixnotation.Grammar) string {
	t.Helper()
	tokens, err := postfixnotation.Tokenize(postfixnotation.Normalize(expression), grammar)
	require.NoError(t, err)
	postfix, err := postfixnotation.ToPostfixNotation(tokens)
	require.NoError(t, err)
	parts := make([]string, len(postfix))
	for i, tok := range postfix {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}

func TestTokenize(t *testing.T) {
	tokens, err := postfixnotation.Tokenize("-12.5 + (3*-4)", postfixnotation.Basic)
	require.NoError(t, err)
	want := []postfixnotation.Token{
		{Kind: postfixnotation.Number, Symbol: "-12.5", Value: -12.5},
		{Kind: postfixnotation.Operator, Symbol: "+"},
		{Kind: postfixnotation.LeftParen, Symbol: "("},
		{Kind: postfixnotation.Number, Symbol: "3", Value: 3},
		{Kind: postfixnotation.Operator, Symbol: "*"},
		{Kind: postfixnotation.Number, Symbol: "-4", Value: -4},
		{Kind: postfixnotation.RightParen, Symbol: ")"},
	}
	assert.Equal(t, want, tokens)
}

func TestTokenizeWhitespaceIsIgnored(t *testing.T) {
	a, err := postfixnotation.Tokenize("1+2*3", postfixnotation.Basic)
	require.NoError(t, err)
	b, err := postfixnotation.Tokenize("  1 +\t2 *  3 ", postfixnotation.Basic)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTokenizeMinusAfterNumberIsBinary(t *testing.T) {
	tokens, err := postfixnotation.Tokenize("5-3", postfixnotation.Basic)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, postfixnotation.Operator, tokens[1].Kind)
}

func TestTokenizeScientificNames(t *testing.T) {
	tokens, err := postfixnotation.Tokenize("asin(1)+sin(π)*e", postfixnotation.Scientific)
	require.NoError(t, err)
	assert.Equal(t, "asin", tokens[0].Symbol)
	assert.Equal(t, postfixnotation.Function, tokens[0].Kind)
	assert.Equal(t, "sin", tokens[5].Symbol)
	assert.Equal(t, postfixnotation.Constant, tokens[7].Kind)
	assert.Equal(t, math.Pi, tokens[7].Value)
	assert.Equal(t, math.E, tokens[10].Value)
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	for _, expr := range []string{"2 + a", "3 $ 4", "sin(30)", "2^3", "5!"} {
		t.Run(expr, func(t *testing.T) {
			_, err := postfixnotation.Tokenize(expr, postfixnotation.Basic)
			assert.ErrorIs(t, err, postfixnotation.ErrInvalidCharacter)
		})
	}
	_, err := postfixnotation.Tokenize("sinh(1)", postfixnotation.Scientific)
	assert.ErrorIs(t, err, postfixnotation.ErrInvalidCharacter)
}

func TestToPostfixNotation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple addition", "2+2", "2 2 +"},
		{"grouping", "(2+2)*2", "2 2 + 2 *"},
		{"precedence", "0 + 6 - 1 + (2*100)", "0 6 + 1 - 2 100 * +"},
		{"left associative power", "2^3^2", "2 3 ^ 2 ^"},
		{"function application", "sqrt(16) + 1", "16 sqrt 1 +"},
		{"nested functions", "sin(cos(0))", "0 cos sin"},
		{"postfix factorial", "3! * 2", "3 ! 2 *"},
		{"prefix negation", "6 / -(2+1)", "6 2 1 + neg /"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, postfixString(t, tt.input, postfixnotation.Scientific))
		})
	}
}

func TestToPostfixNotationUnbalanced(t *testing.T) {
	for _, expr := range []string{"(2+3", "2+3)", "((1)", ")(", "sin(30"} {
		t.Run(expr, func(t *testing.T) {
			_, err := postfixnotation.Calc(expr, scientific)
			assert.ErrorIs(t, err, postfixnotation.ErrUnbalancedParentheses)
		})
	}
}

func TestCalc(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		expected   float64
	}{
		{"precedence", "2 + 3 × 4", 14},
		{"grouping", "(2 + 3) × 4", 20},
		{"division", "10 ÷ 4", 2.5},
		{"leading minus", "-5-5", -10},
		{"minus after paren", "2*(-3+1)", -4},
		{"minus after multiply", "12 × -3", -36},
		{"complex negative", "-3*(2+4)/2", -9},
		{"decimals", "0.1 + .2", 0.30000000000000004},
		{"repeated addition", "1+1+1+1", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := postfixnotation.Calc(tt.expression, postfixnotation.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestCalcScientific(t *testing.T) {
	tests := []struct {
		expression string
		angle      postfixnotation.AngleMode
		expected   float64
	}{
		{"factorial(5)", postfixnotation.Radians, 120},
		{"5!", postfixnotation.Radians, 120},
		{"factorial(0)", postfixnotation.Radians, 1},
		{"2^3^2", postfixnotation.Radians, 64},
		{"2^10", postfixnotation.Radians, 1024},
		{"sqrt(16) + log(1000)", postfixnotation.Radians, 7},
		{"ln(e)", postfixnotation.Radians, 1},
		{"sin(30)", postfixnotation.Degrees, 0.5},
		{"cos(π)", postfixnotation.Radians, -1},
		{"asin(1)", postfixnotation.Degrees, 90},
		{"6 / -(2+1)", postfixnotation.Radians, -2},
		{"-(2)^2", postfixnotation.Radians, 4},
		{"2 × π", postfixnotation.Radians, 2 * math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			val, err := postfixnotation.Calc(tt.expression, postfixnotation.Options{
				Grammar: postfixnotation.Scientific,
				Angle:   tt.angle,
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, val, 1e-9)
		})
	}
}

func TestCalcErrors(t *testing.T) {
	tests := []struct {
		expression string
		expected   error
	}{
		{"5 ÷ 0", postfixnotation.ErrDivisionByZero},
		{"1 / (2 - 2)", postfixnotation.ErrDivisionByZero},
		{"factorial(-1)", postfixnotation.ErrInvalidFactorialArgument},
		{"factorial(2.5)", postfixnotation.ErrInvalidFactorialArgument},
		{"2.5!", postfixnotation.ErrInvalidFactorialArgument},
		{"factorial(171)", postfixnotation.ErrResultOverflow},
		{"10^400", postfixnotation.ErrResultOverflow},
		{"sqrt(-1)", postfixnotation.ErrResultOverflow},
		{"ln(0)", postfixnotation.ErrResultOverflow},
		{"", postfixnotation.ErrMalformedExpression},
		{"1 +", postfixnotation.ErrMalformedExpression},
		{"2 + + 2", postfixnotation.ErrMalformedExpression},
		{"1 2", postfixnotation.ErrMalformedExpression},
		{"1.2.3", postfixnotation.ErrMalformedExpression},
		{"sin 30", postfixnotation.ErrMalformedExpression},
		{"2 + x", postfixnotation.ErrInvalidCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			_, err := postfixnotation.Calc(tt.expression, scientific)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestCalcIsDeterministic(t *testing.T) {
	for _, expr := range []string{"2 + 3 × 4", "(1.5 - 7) ÷ 3", "sin(1) + 2^0.5"} {
		a, errA := postfixnotation.Calc(expr, scientific)
		b, errB := postfixnotation.Calc(expr, scientific)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, a, b, expr)
	}
}

func TestEvaluateGuardsUnderflow(t *testing.T) {
	_, err := postfixnotation.Evaluate([]postfixnotation.Token{
		{Kind: postfixnotation.Operator, Symbol: "+"},
	}, postfixnotation.Radians)
	assert.ErrorIs(t, err, postfixnotation.ErrMalformedExpression)

	_, err = postfixnotation.Evaluate([]postfixnotation.Token{
		{Kind: postfixnotation.Function, Symbol: "sqrt"},
	}, postfixnotation.Radians)
	assert.ErrorIs(t, err, postfixnotation.ErrMalformedExpression)
}

func TestParseAngleMode(t *testing.T) {
	assert.Equal(t, postfixnotation.Degrees, postfixnotation.ParseAngleMode("DEG"))
	assert.Equal(t, postfixnotation.Degrees, postfixnotation.ParseAngleMode("degrees"))
	assert.Equal(t, postfixnotation.Radians, postfixnotation.ParseAngleMode("rad"))
	assert.Equal(t, postfixnotation.Radians, postfixnotation.ParseAngleMode(""))
}

func TestGrammarString(t *testing.T) {
	assert.Equal(t, "basic", postfixnotation.Basic.String())
	assert.Equal(t, "scientific", postfixnotation.Scientific.String())
}
