package interest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func form(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func TestCalculateHTML(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name:     "simple",
			params:   Params{Principal: 10000, Rate: 10, Time: 1, TimeUnit: "Years", Type: Simple},
			expected: "Simple Interest: 1,000.00 INR<br>Total Amount: 11,000.00 INR",
		},
		{
			name:     "simple in months",
			params:   Params{Principal: 12000, Rate: 10, Time: 6, TimeUnit: "Months", Type: Simple},
			expected: "Simple Interest: 600.00 INR<br>Total Amount: 12,600.00 INR",
		},
		{
			name:     "compound annually",
			params:   Params{Principal: 10000, Rate: 10, Time: 2, TimeUnit: "Years", Type: Compound, Frequency: "Annually"},
			expected: "Compound Interest: 2,100.00 INR<br>Total Amount: 12,100.00 INR",
		},
		{
			name:     "compare",
			params:   Params{Principal: 10000, Rate: 10, Time: 2, TimeUnit: "Years", Type: Compare, Frequency: "Annually"},
			expected: "Simple Interest: 2,000.00 INR<br>Compound Interest: 2,100.00 INR<br>Difference: 100.00 INR",
		},
		{
			name:     "emi without interest",
			params:   Params{Principal: 1200, Rate: 0, Time: 1, TimeUnit: "Years", Type: EMI},
			expected: "Monthly EMI: 100.00 INR<br>Total Interest: 0.00 INR<br>Total Amount: 1,200.00 INR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.HTML())
		})
	}
}

func TestMonthlyInstalment(t *testing.T) {
	emi, a, err := MonthlyInstalment(100000, 12, 1)
	require.NoError(t, err)
	assert.Equal(t, "8884.88", emi.String())
	assert.Equal(t, "106618.55", a.Total.String())
	assert.Equal(t, "6618.55", a.Interest.String())

	_, _, err = MonthlyInstalment(1000, 5, 0)
	assert.ErrorIs(t, err, ErrZeroTime)
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected error
	}{
		{"negative", Params{Principal: -1, Rate: 1, Time: 1, TimeUnit: "Years", Type: Simple}, ErrNegativeValues},
		{"too long", Params{Principal: 1, Rate: 1, Time: 1001, TimeUnit: "Years", Type: Simple}, ErrTimeTooLong},
		{"unknown type", Params{Principal: 1, Rate: 1, Time: 1, TimeUnit: "Years", Type: "weird"}, ErrUnknownType},
		{"unknown frequency", Params{Principal: 1, Rate: 1, Time: 1, TimeUnit: "Years", Type: Compound, Frequency: "Weekly"}, ErrUnknownFrequency},
		{"overflow", Params{Principal: 1e300, Rate: 1000, Time: 1000, TimeUnit: "Years", Type: Compound, Frequency: "Monthly"}, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.params)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	// the year cap only applies to periods given in years
	_, err := Calculate(Params{Principal: 1, Rate: 1, Time: 1001, TimeUnit: "Months", Type: Simple})
	assert.NoError(t, err)
}

func TestParseForm(t *testing.T) {
	p, err := ParseForm(form(
		"principal", "1,00,000",
		"rate", " 7.5 ",
		"time", "3",
		"time_unit", "Years",
		"interest_type", "compound",
	))
	require.NoError(t, err)
	assert.Equal(t, Params{
		Principal: 100000,
		Rate:      7.5,
		Time:      3,
		TimeUnit:  "Years",
		Type:      Compound,
		Frequency: DefaultFrequency,
	}, p)
}

func TestParseFormErrors(t *testing.T) {
	_, err := ParseForm(form("rate", "1"))
	assert.EqualError(t, err, "Missing required field: 'principal'")

	_, err = ParseForm(form("principal", "abc", "rate", "1"))
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = ParseForm(form("principal", "NaN", "rate", "1"))
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = ParseForm(form("principal", "1", "rate", "1", "time", "1", "time_unit", "Years"))
	assert.EqualError(t, err, "Missing required field: 'interest_type'")
}
