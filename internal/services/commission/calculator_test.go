package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculator_Commission(t *testing.T) {
	calc := NewCalculator(DefaultRate)

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "round hundred", amount: "100.00", want: "1.5"},
		{name: "fifty", amount: "50.00", want: "0.75"},
		{name: "three decimals kept", amount: "25.00", want: "0.375"},
		{name: "minimum amount rounds half up", amount: "0.01", want: "0.0002"},
		{name: "half away from zero", amount: "0.03", want: "0.0005"},
		{name: "below rounding half", amount: "0.02", want: "0.0003"},
		{name: "odd cents", amount: "123.45", want: "1.8518"},
		{name: "maximum amount", amount: "999999999.99", want: "14999999.9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Commission(decimal.RequireFromString(tt.amount))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalculator_TotalDebit(t *testing.T) {
	calc := NewCalculator(decimal.Zero)

	got := calc.TotalDebit(decimal.RequireFromString("100.00"))

	assert.Equal(t, "101.5", got.String())
	assert.True(t, DefaultRate.Equal(calc.Rate()))
}

func TestCalculator_MatchesRoundedRate(t *testing.T) {
	calc := NewCalculator(DefaultRate)

	for cents := int64(1); cents <= 5000; cents += 7 {
		amount := decimal.New(cents, -2)
		want := amount.Mul(decimal.RequireFromString("0.015")).Round(4)
		assert.True(t, want.Equal(calc.Commission(amount)), "amount %s", amount)
	}
}
