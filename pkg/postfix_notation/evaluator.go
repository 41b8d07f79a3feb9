package postfixnotation

import (
	"fmt"
	"math"
	"strings"
)

// AngleMode is the unit trigonometric functions work in.
type AngleMode int

const (
	Radians AngleMode = iota
	Degrees
)

func (a AngleMode) String() string {
	if a == Degrees {
		return "deg"
	}
	return "rad"
}

// ParseAngleMode accepts "deg"/"degrees" and "rad"/"radians"; anything else
// is radians.
func ParseAngleMode(s string) AngleMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return Degrees
	default:
		return Radians
	}
}

func (a AngleMode) in(x float64) float64 {
	if a == Degrees {
		return x * math.Pi / 180
	}
	return x
}

func (a AngleMode) out(x float64) float64 {
	if a == Degrees {
		return x * 180 / math.Pi
	}
	return x
}

type unaryFunc func(x float64, angle AngleMode) (float64, error)

func plain(f func(float64) float64) unaryFunc {
	return func(x float64, _ AngleMode) (float64, error) { return f(x), nil }
}

var functions = map[string]unaryFunc{
	"sin":       func(x float64, a AngleMode) (float64, error) { return math.Sin(a.in(x)), nil },
	"cos":       func(x float64, a AngleMode) (float64, error) { return math.Cos(a.in(x)), nil },
	"tan":       func(x float64, a AngleMode) (float64, error) { return math.Tan(a.in(x)), nil },
	"asin":      func(x float64, a AngleMode) (float64, error) { return a.out(math.Asin(x)), nil },
	"acos":      func(x float64, a AngleMode) (float64, error) { return a.out(math.Acos(x)), nil },
	"atan":      func(x float64, a AngleMode) (float64, error) { return a.out(math.Atan(x)), nil },
	"ln":        plain(math.Log),
	"log":       plain(math.Log10),
	"sqrt":      plain(math.Sqrt),
	"factorial": factorial,
	"!":         factorial,
	negate:      plain(func(x float64) float64 { return -x }),
}

// maxFactorial is the largest n whose factorial is finite in float64.
const maxFactorial = 170

func factorial(x float64, _ AngleMode) (float64, error) {
	if x < 0 || x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFactorialArgument, x)
	}
	if x > maxFactorial {
		return math.Inf(1), nil
	}
	res := 1.0
	for i := 2; i <= int(x); i++ {
		res *= float64(i)
	}
	return res, nil
}

func binary(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case "^":
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %s", ErrMalformedExpression, op)
}

// Evaluate reduces a postfix sequence with a value stack.
func Evaluate(postfix []Token, angle AngleMode) (float64, error) {
	stack := make([]float64, 0, len(postfix))
	for _, t := range postfix {
		switch t.Kind {
		case Number, Constant:
			stack = append(stack, t.Value)
		case Operator:
			if len(stack) < 2 {
				return 0, fmt.Errorf("%w: %s is missing an operand", ErrMalformedExpression, t.Symbol)
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			res, err := binary(t.Symbol, a, b)
			if err != nil {
				return 0, err
			}
			stack = append(stack, res)
		case Prefix, Postfix, Function:
			f, ok := functions[t.Symbol]
			if !ok {
				return 0, fmt.Errorf("%w: unknown function %s", ErrMalformedExpression, t.Symbol)
			}
			if len(stack) < 1 {
				return 0, fmt.Errorf("%w: %s is missing an argument", ErrMalformedExpression, t.Symbol)
			}
			res, err := f(stack[len(stack)-1], angle)
			if err != nil {
				return 0, err
			}
			stack[len(stack)-1] = res
		default:
			return 0, fmt.Errorf("%w: %s in postfix sequence", ErrMalformedExpression, t.Kind)
		}
	}
	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: %d values left after reduction", ErrMalformedExpression, len(stack))
	}
	res := stack[0]
	if math.IsInf(res, 0) || math.IsNaN(res) {
		return 0, ErrResultOverflow
	}
	return res, nil
}

// Options select the grammar and angle unit of Calc.
type Options struct {
	Grammar Grammar
	Angle   AngleMode
}

// Calc runs the whole pipeline on a keypad expression.
func Calc(expression string, opts Options) (float64, error) {
	tokens, err := Tokenize(Normalize(expression), opts.Grammar)
	if err != nil {
		return 0, err
	}
	postfix, err := ToPostfixNotation(tokens)
	if err != nil {
		return 0, err
	}
	return Evaluate(postfix, opts.Angle)
}
