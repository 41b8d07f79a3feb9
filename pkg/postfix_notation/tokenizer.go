package postfixnotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var glyphs = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"−", "-",
	"√", "sqrt",
)

// Normalize maps the operator glyphs shown on the keypad to the canonical
// symbols understood by Tokenize.
func Normalize(expression string) string {
	return glyphs.Replace(expression)
}

// Tokenize splits a normalized expression into tokens.
// Whitespace is skipped. A minus sign is read as unary at the start of the
// expression, after "(" and after "*", "/" or "^"; followed by a number it
// becomes part of the literal, otherwise it becomes a prefix negation.
func Tokenize(expression string, grammar Grammar) ([]Token, error) {
	tokens := make([]Token, 0, len(expression)/2+1)
	for i := 0; i < len(expression); {
		r, size := utf8.DecodeRuneInString(expression[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigitOrPoint(r):
			n, next, err := readNumber(expression, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: Number, Symbol: expression[i:next], Value: n})
			i = next
		case r == '-' && unaryPosition(tokens):
			j := skipSpaces(expression, i+1)
			if j < len(expression) && isDigitOrPoint(rune(expression[j])) {
				n, next, err := readNumber(expression, j)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, Token{Kind: Number, Symbol: "-" + expression[j:next], Value: -n})
				i = next
				continue
			}
			tokens = append(tokens, Token{Kind: Prefix, Symbol: negate})
			i += size
		case r == '+' || r == '-' || r == '*' || r == '/' || (r == '^' && grammar == Scientific):
			tokens = append(tokens, Token{Kind: Operator, Symbol: string(r)})
			i += size
		case r == '!' && grammar == Scientific:
			tokens = append(tokens, Token{Kind: Postfix, Symbol: "!"})
			i += size
		case r == '(':
			tokens = append(tokens, Token{Kind: LeftParen, Symbol: "("})
			i += size
		case r == ')':
			tokens = append(tokens, Token{Kind: RightParen, Symbol: ")"})
			i += size
		default:
			name := ""
			if grammar == Scientific {
				name = matchName(expression[i:])
			}
			if name == "" {
				return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, r, i)
			}
			if v, ok := constants[name]; ok {
				tokens = append(tokens, Token{Kind: Constant, Symbol: name, Value: v})
			} else {
				tokens = append(tokens, Token{Kind: Function, Symbol: name})
			}
			i += len(name)
		}
	}
	return tokens, nil
}

func isDigitOrPoint(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}

// readNumber reads the digit/point run starting at i and returns its value
// and the index just past it.
func readNumber(s string, i int) (float64, int, error) {
	j := i
	for j < len(s) && isDigitOrPoint(rune(s[j])) {
		j++
	}
	n, err := strconv.ParseFloat(s[i:j], 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, j, fmt.Errorf("%w: literal %s", ErrResultOverflow, s[i:j])
		}
		return 0, j, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, s[i:j])
	}
	return n, j, nil
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func unaryPosition(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	prev := tokens[len(tokens)-1]
	switch prev.Kind {
	case LeftParen:
		return true
	case Operator:
		return prev.Symbol == "*" || prev.Symbol == "/" || prev.Symbol == "^"
	}
	return false
}

func matchName(s string) string {
	for _, name := range names {
		if strings.HasPrefix(s, name) {
			return name
		}
	}
	return ""
}
