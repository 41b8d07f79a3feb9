package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postfixnotation "fincalc/pkg/postfix_notation"
)

func TestResolvePercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"100 + 50%", "100 + 50"},
		{"100 - 50%", "100 - 50"},
		{"200+10%", "200+20"},
		{"100 × 50%", "100 × 0.5"},
		{"100 ÷ 50%", "100 ÷ 0.5"},
		{"50%", "0.5"},
		{"-50%", "-0.5"},
		{"33.3 + 10%", "33.3 + 3.33"},
		{"-100 + 50%", "-100 - 50"},
		{"-100 - 50%", "-100 + 50"},
		{"3 × -50%", "3 × -0.5"},
		{"10 + 100 + 50%", "10 + 100 + 50"},
		{"2 × 100 + 50%", "2 × 100 + 50"},
		{"(50%", "(0.5"},
		{"12. + 50%", "12. + 6"},
		{"12. × 50%", "12. × 0.5"},
		{"12.%", "0.12"},
		{"5-100 + 50%", "5-100 + 50"},
		{"5 - -100 + 50%", "5 - -100 - 50"},
		{"(-100 + 50%", "(-100 - 50"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, ok := ResolvePercent(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestResolvePercentNoMatch(t *testing.T) {
	for _, input := range []string{"", "%", "100 + ", "12 × -%", "100"} {
		t.Run(input, func(t *testing.T) {
			out, ok := ResolvePercent(input)
			assert.False(t, ok)
			assert.Equal(t, input, out)
		})
	}
}

func TestEvaluateWithPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"100 + 50%", 150},
		{"100 × 50%", 50},
		{"50%", 0.5},
		{"200 - 25%", 150},
		{"12. + 50%", 18},
		{"5-100 + 50%", -45},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Evaluate(tt.input, postfixnotation.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestMessage(t *testing.T) {
	_, err := Evaluate("5 ÷ 0", postfixnotation.Options{})
	assert.Equal(t, "Cannot divide by zero", Message(err))
	_, err = Evaluate("(1 + 2", postfixnotation.Options{})
	assert.Equal(t, "Mismatched parentheses", Message(err))
	_, err = Evaluate("1 + +", postfixnotation.Options{})
	assert.Equal(t, ErrorText, Message(err))
	assert.Empty(t, Message(nil))
}
