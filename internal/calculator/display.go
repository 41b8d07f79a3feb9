package calculator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale            = "en-IN"
	DefaultMaxFractionDigits = 4
)

var numericRun = regexp.MustCompile(`\d+(\.\d*)?`)

// Formatter renders expressions and values with locale digit grouping.
type Formatter struct {
	printer           *message.Printer
	maxFractionDigits int
}

// NewFormatter builds a Formatter for a BCP 47 locale. An empty locale means
// DefaultLocale and a negative digit cap means DefaultMaxFractionDigits.
func NewFormatter(locale string, maxFractionDigits int) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("bad locale %q: %w", locale, err)
	}
	if maxFractionDigits < 0 {
		maxFractionDigits = DefaultMaxFractionDigits
	}
	return &Formatter{printer: message.NewPrinter(tag), maxFractionDigits: maxFractionDigits}, nil
}

// Number formats a value with grouping and at most the configured number of
// fraction digits.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(f.maxFractionDigits)))
}

// Expression groups the integer part of every numeric run. Fraction digits
// are kept exactly as typed.
func (f *Formatter) Expression(expr string) string {
	return numericRun.ReplaceAllStringFunc(expr, func(run string) string {
		intPart, frac, hasPoint := strings.Cut(run, ".")
		n, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return run
		}
		out := f.printer.Sprint(number.Decimal(n))
		if hasPoint {
			out += "." + frac
		}
		return out
	})
}

// Display holds the two output regions of the keypad.
type Display struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	// Message is set only when the result region shows ErrorText.
	Message string `json:"message,omitempty"`
}
