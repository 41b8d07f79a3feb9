package interest

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Error is a message shown verbatim to the user of the interest form.
type Error string

func (e Error) Error() string { return string(e) }

const MaxTimeYears = 1000

const (
	ErrNegativeValues   Error = "Negative values are not allowed."
	ErrTimeTooLong      Error = "Time period is too long (max 1000 years)."
	ErrUnknownType      Error = "Please select an interest type."
	ErrNotNumeric       Error = "Please enter valid numeric values."
	ErrTooLarge         Error = "Result too large to calculate."
	ErrUnknownFrequency Error = "Please select a compounding frequency."
	ErrZeroTime         Error = "Time period must be greater than zero."
)

func missingField(name string) Error {
	return Error(fmt.Sprintf("Missing required field: '%s'", name))
}

// Interest types.
const (
	Simple   = "simple"
	Compound = "compound"
	EMI      = "emi"
	Compare  = "compare"
)

// timeConversions turn a time unit into years.
var timeConversions = map[string]float64{
	"Years":   1,
	"Months":  1.0 / 12,
	"Days":    1.0 / 365,
	"Minutes": 1.0 / 525600,
	"Seconds": 1.0 / 31536000,
}

// compoundFrequencies is the number of compounding periods per year.
var compoundFrequencies = map[string]float64{
	"Annually":      1,
	"Semi-Annually": 2,
	"Quarterly":     4,
	"Monthly":       12,
}

const DefaultFrequency = "Annually"

type Params struct {
	Principal float64
	Rate      float64 // percent per annum
	Time      float64
	TimeUnit  string
	Type      string
	Frequency string
}

// Years is the time period converted to years. Unknown units count as years.
func (p Params) Years() float64 {
	if f, ok := timeConversions[p.TimeUnit]; ok {
		return p.Time * f
	}
	return p.Time
}

// ParseForm reads the fields of the interest form in the order the form
// lists them, failing on the first missing or malformed one.
func ParseForm(form url.Values) (Params, error) {
	var p Params
	var err error
	if p.Principal, err = formNumber(form, "principal"); err != nil {
		return p, err
	}
	if p.Rate, err = formNumber(form, "rate"); err != nil {
		return p, err
	}
	if p.Time, err = formNumber(form, "time"); err != nil {
		return p, err
	}
	if p.TimeUnit, err = formField(form, "time_unit"); err != nil {
		return p, err
	}
	if p.Type, err = formField(form, "interest_type"); err != nil {
		return p, err
	}
	p.Frequency = form.Get("frequency")
	if p.Frequency == "" {
		p.Frequency = DefaultFrequency
	}
	return p, nil
}

func formField(form url.Values, name string) (string, error) {
	v, ok := form[name]
	if !ok || len(v) == 0 {
		return "", missingField(name)
	}
	return v[0], nil
}

func formNumber(form url.Values, name string) (float64, error) {
	s, err := formField(form, name)
	if err != nil {
		return 0, err
	}
	return ParseNumber(s)
}

// ParseNumber parses an amount typed with thousands separators.
func ParseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", "")), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrNotNumeric
	}
	return n, nil
}

// Amounts of one computation, rounded to two decimals.
type Amounts struct {
	Interest decimal.Decimal `json:"interest"`
	Total    decimal.Decimal `json:"total"`
}

type Result struct {
	Type string `json:"type"`
	Amounts
	Monthly  decimal.Decimal `json:"monthly"`            // emi only
	Compound *Amounts        `json:"compound,omitempty"` // compare only
}

// Calculate validates p and computes the requested kind of interest.
func Calculate(p Params) (Result, error) {
	if p.Principal < 0 || p.Rate < 0 || p.Time < 0 {
		return Result{}, ErrNegativeValues
	}
	if p.Time > MaxTimeYears && p.TimeUnit == "Years" {
		return Result{}, ErrTimeTooLong
	}
	years := p.Years()

	res := Result{Type: p.Type}
	var err error
	switch p.Type {
	case Simple:
		res.Amounts, err = SimpleInterest(p.Principal, p.Rate, years)
	case Compound:
		res.Amounts, err = CompoundInterest(p.Principal, p.Rate, years, p.Frequency)
	case EMI:
		res.Monthly, res.Amounts, err = MonthlyInstalment(p.Principal, p.Rate, years)
	case Compare:
		var compound Amounts
		if res.Amounts, err = SimpleInterest(p.Principal, p.Rate, years); err != nil {
			return Result{}, err
		}
		if compound, err = CompoundInterest(p.Principal, p.Rate, years, p.Frequency); err != nil {
			return Result{}, err
		}
		res.Compound = &compound
	default:
		return Result{}, ErrUnknownType
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// CalculateForm parses the interest form and calculates it.
func CalculateForm(form url.Values) (Result, error) {
	p, err := ParseForm(form)
	if err != nil {
		return Result{}, err
	}
	return Calculate(p)
}

func SimpleInterest(principal, rate, years float64) (Amounts, error) {
	interest := principal * rate * years / 100
	return amounts(interest, principal+interest)
}

func CompoundInterest(principal, rate, years float64, frequency string) (Amounts, error) {
	n, ok := compoundFrequencies[frequency]
	if !ok {
		return Amounts{}, ErrUnknownFrequency
	}
	total := principal * math.Pow(1+rate/(100*n), n*years)
	return amounts(total-principal, total)
}

// MonthlyInstalment is the reducing-balance EMI over years*12 months.
func MonthlyInstalment(principal, rate, years float64) (decimal.Decimal, Amounts, error) {
	months := years * 12
	if months <= 0 {
		return decimal.Zero, Amounts{}, ErrZeroTime
	}
	var emi float64
	if r := rate / 12 / 100; r == 0 {
		emi = principal / months
	} else {
		f := math.Pow(1+r, months)
		emi = principal * r * f / (f - 1)
	}
	total := emi * months
	a, err := amounts(total-principal, total)
	if err != nil {
		return decimal.Zero, Amounts{}, err
	}
	return decimal.NewFromFloat(emi).Round(2), a, nil
}

func amounts(interest, total float64) (Amounts, error) {
	if !finite(interest) || !finite(total) {
		return Amounts{}, ErrTooLarge
	}
	return Amounts{
		Interest: decimal.NewFromFloat(interest).Round(2),
		Total:    decimal.NewFromFloat(total).Round(2),
	}, nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

var printer = message.NewPrinter(language.AmericanEnglish)

func inr(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2))) + " INR"
}

// HTML renders the result fragment the page inserts below the form.
func (r Result) HTML() string {
	var lines []string
	switch r.Type {
	case Simple:
		lines = []string{"Simple Interest: " + inr(r.Interest), "Total Amount: " + inr(r.Total)}
	case Compound:
		lines = []string{"Compound Interest: " + inr(r.Interest), "Total Amount: " + inr(r.Total)}
	case EMI:
		lines = []string{
			"Monthly EMI: " + inr(r.Monthly),
			"Total Interest: " + inr(r.Interest),
			"Total Amount: " + inr(r.Total),
		}
	case Compare:
		lines = []string{
			"Simple Interest: " + inr(r.Interest),
			"Compound Interest: " + inr(r.Compound.Interest),
			"Difference: " + inr(r.Compound.Interest.Sub(r.Interest)),
		}
	}
	return strings.Join(lines, "<br>")
}
