package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inr(amount float64) Money { return NewMoneyINRFromFloat(amount) }

func TestMoneyConstructors(t *testing.T) {
	t.Run("NewMoney", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("NewMoney rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("NewMoneyFromFloat", func(t *testing.T) {
		m, err := NewMoneyFromFloat(99.99, USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(99.99)))
	})

	t.Run("NewMoneyFromInt", func(t *testing.T) {
		m, err := NewMoneyFromInt(1000, EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.Equal(t, int64(1000), m.Amount().IntPart())
	})

	t.Run("NewMoneyFromString", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))

		_, err = NewMoneyFromString("fifty rupees", INR)
		assert.Error(t, err)
	})

	t.Run("INR shorthands", func(t *testing.T) {
		assert.Equal(t, INR, NewMoneyINR(decimal.NewFromFloat(50)).Currency())
		assert.Equal(t, 75.5, inr(75.50).Float64())

		m, err := NewMoneyINRFromString("199.99")
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
	})

	t.Run("zero values", func(t *testing.T) {
		assert.True(t, Zero(USD).IsZero())
		assert.Equal(t, USD, Zero(USD).Currency())
		assert.True(t, ZeroINR().IsZero())
		assert.Equal(t, INR, ZeroINR().Currency())
	})
}

func TestMoneySign(t *testing.T) {
	tests := []struct {
		name                          string
		m                             Money
		positive, negative, zero bool
	}{
		{"positive", inr(100), true, false, false},
		{"negative", inr(-100), false, true, false},
		{"zero", ZeroINR(), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.positive, tt.m.IsPositive())
			assert.Equal(t, tt.negative, tt.m.IsNegative())
			assert.Equal(t, tt.zero, tt.m.IsZero())
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		result, err := inr(100.50).Add(inr(50.25))
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(150.75)))
	})

	t.Run("Add refuses mixed currencies", func(t *testing.T) {
		usd, _ := NewMoneyFromFloat(50, USD)
		_, err := inr(100).Add(usd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})

	t.Run("MustAdd", func(t *testing.T) {
		assert.Equal(t, 150.0, inr(100).MustAdd(inr(50)).Float64())
	})

	t.Run("MustAdd panics on mixed currencies", func(t *testing.T) {
		usd, _ := NewMoneyFromFloat(50, USD)
		assert.Panics(t, func() { inr(100).MustAdd(usd) })
	})

	t.Run("Subtract", func(t *testing.T) {
		result, err := inr(100.50).Subtract(inr(50.25))
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(50.25)))
	})

	t.Run("Subtract refuses mixed currencies", func(t *testing.T) {
		usd, _ := NewMoneyFromFloat(50, USD)
		_, err := inr(100).Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("MultiplyByInt scales by quantity", func(t *testing.T) {
		// 3 pieces at 100 rupees each
		assert.Equal(t, 300.0, inr(100).MultiplyByInt(3).Float64())

		zero := inr(100).MultiplyByInt(0)
		assert.True(t, zero.IsZero())
		assert.Equal(t, INR, zero.Currency())
	})

	t.Run("Round", func(t *testing.T) {
		m := inr(100.456)
		assert.Equal(t, "100.46", m.Round(2).StringFixed(2))
		assert.Equal(t, "100", m.Round(0).String())
	})
}

func TestMoneyComparisons(t *testing.T) {
	m100 := inr(100)
	m50 := inr(50)

	t.Run("Equals", func(t *testing.T) {
		assert.True(t, m100.Equals(inr(100)))
		assert.False(t, m100.Equals(m50))
	})

	t.Run("LessThan and GreaterThan", func(t *testing.T) {
		less, err := m50.LessThan(m100)
		require.NoError(t, err)
		assert.True(t, less)

		greater, err := m100.GreaterThan(m50)
		require.NoError(t, err)
		assert.True(t, greater)
	})

	t.Run("refuses mixed currencies", func(t *testing.T) {
		usd, _ := NewMoneyFromFloat(100, USD)
		_, err := m100.LessThan(usd)
		assert.Error(t, err)
	})
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "123.45 INR", inr(123.45).String())
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshal keeps amount as string", func(t *testing.T) {
		data, err := json.Marshal(inr(99.99))
		require.NoError(t, err)
		assert.Contains(t, string(data), "99.99")
		assert.Contains(t, string(data), "INR")
	})

	t.Run("unmarshal", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"123.45","currency":"USD"}`), &m))
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("123.45"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("bytes", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan([]byte("99.99")))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(99.99)))
	})

	t.Run("nil becomes zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(12345))
	})
}

func TestMoneyValue(t *testing.T) {
	val, err := inr(123.45).Value()
	require.NoError(t, err)
	assert.Equal(t, "123.45", val)
}

func TestParseMoneyFromJSON(t *testing.T) {
	t.Run("valid rupee amount", func(t *testing.T) {
		money, err := ParseMoneyFromJSON([]byte(`{"amount":"99.99","currency":"INR"}`))
		require.NoError(t, err)
		assert.True(t, money.Amount().Equal(decimal.NewFromFloat(99.99)))
		assert.Equal(t, INR, money.Currency())
	})

	t.Run("other currencies pass through", func(t *testing.T) {
		money, err := ParseMoneyFromJSON([]byte(`{"amount":"150.00","currency":"USD"}`))
		require.NoError(t, err)
		assert.True(t, money.Amount().Equal(decimal.NewFromFloat(150.00)))
		assert.Equal(t, USD, money.Currency())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseMoneyFromJSON([]byte(`{invalid json}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse money JSON")
	})

	t.Run("malformed amount", func(t *testing.T) {
		_, err := ParseMoneyFromJSON([]byte(`{"amount":"not-a-number","currency":"INR"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid amount")
	})

	t.Run("missing currency is rejected, not defaulted", func(t *testing.T) {
		_, err := ParseMoneyFromJSON([]byte(`{"amount":"100.00","currency":""}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}
