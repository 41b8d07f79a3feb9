package postfixnotation

import (
	"math"
	"strconv"
)

// Kind tags a Token.
type Kind int

const (
	Number Kind = iota
	Constant
	Operator // binary, left-associative
	Prefix   // unary minus in front of a non-literal operand
	Postfix  // factorial written as "!"
	Function
	LeftParen
	RightParen
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Constant:
		return "constant"
	case Operator:
		return "operator"
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Function:
		return "function"
	case LeftParen:
		return "("
	case RightParen:
		return ")"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of an expression. Value is only meaningful for
// Number and Constant tokens.
type Token struct {
	Kind   Kind
	Symbol string
	Value  float64
}

func (t Token) String() string {
	if t.Kind == Number {
		return strconv.FormatFloat(t.Value, 'f', -1, 64)
	}
	return t.Symbol
}

// Grammar selects which symbols the tokenizer accepts.
type Grammar int

const (
	Basic Grammar = iota
	Scientific
)

func (g Grammar) String() string {
	if g == Scientific {
		return "scientific"
	}
	return "basic"
}

// negate is the internal symbol of the unary minus prefix operator.
const negate = "neg"

// precedence of operators; higher binds tighter. Every binary operator,
// power included, is treated as left-associative.
var precedence = map[string]int{
	"+":    1,
	"-":    1,
	"*":    2,
	"/":    2,
	"^":    3,
	"!":    4,
	negate: 4,
}

// names are matched longest first at each scan position.
var names = []string{
	"factorial",
	"asin",
	"acos",
	"atan",
	"sqrt",
	"sin",
	"cos",
	"tan",
	"log",
	"ln",
	"pi",
	"π",
	"e",
}

var constants = map[string]float64{
	"pi": math.Pi,
	"π":  math.Pi,
	"e":  math.E,
}

// IsFunction reports whether name is a unary function of the scientific
// grammar.
func IsFunction(name string) bool {
	_, ok := functions[name]
	return ok && name != negate && name != "!"
}

// IsConstant reports whether name is a named constant.
func IsConstant(name string) bool {
	_, ok := constants[name]
	return ok
}
