package calculator

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const numberPattern = `(-?(?:\d+\.?\d*|\.\d+))`

// operandStart is what may precede a signed operand; a minus glued to a
// preceding number is binary.
const operandStart = `(?:^|[(\s×÷*/+\-])`

var (
	additiveTail       = regexp.MustCompile(operandStart + numberPattern + `(\s*)([+\-])(\s*)` + numberPattern + `$`)
	multiplicativeTail = regexp.MustCompile(numberPattern + `(\s*)([×÷*/])(\s*)` + numberPattern + `$`)
	bareTail           = regexp.MustCompile(numberPattern + `$`)

	hundred = decimal.NewFromInt(100)
)

// ResolvePercent rewrites a trailing "<number>%" in expression.
//
//	a + b%  ->  a + (a*b/100)
//	a × b%  ->  a × (b/100)
//	b%      ->  b/100
//
// The additive form is tried first. The second result is false when the
// expression does not end in a resolvable percentage.
func ResolvePercent(expression string) (string, bool) {
	expr := strings.TrimRight(expression, " ")
	if !strings.HasSuffix(expr, "%") {
		return expression, false
	}
	expr = strings.TrimRight(strings.TrimSuffix(expr, "%"), " ")

	if m := additiveTail.FindStringSubmatchIndex(expr); m != nil {
		base, err1 := decimal.NewFromString(expr[m[2]:m[3]])
		pct, err2 := decimal.NewFromString(expr[m[10]:m[11]])
		if err1 == nil && err2 == nil {
			v := base.Mul(pct).Div(hundred)
			op := expr[m[6]:m[7]]
			// keep the operand unsigned, a minus after + or - is not unary
			if v.IsNegative() {
				v = v.Neg()
				op = flipSign(op)
			}
			return expr[:m[6]] + op + expr[m[7]:m[10]] + v.String(), true
		}
	}
	if m := multiplicativeTail.FindStringSubmatchIndex(expr); m != nil {
		if pct, err := decimal.NewFromString(expr[m[10]:m[11]]); err == nil {
			return expr[:m[10]] + pct.Div(hundred).String(), true
		}
	}
	if loc := bareTail.FindStringIndex(expr); loc != nil {
		if n, err := decimal.NewFromString(expr[loc[0]:loc[1]]); err == nil {
			return expr[:loc[0]] + n.Div(hundred).String(), true
		}
	}
	return expression, false
}

func flipSign(op string) string {
	if op == "+" {
		return "-"
	}
	return "+"
}
