package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tally/pkg/domain-errors"
)

func TestPurchaseStateMachine(t *testing.T) {
	t.Run("close freezes an open purchase", func(t *testing.T) {
		p := &Purchase{}
		require.NoError(t, p.Close())
		assert.True(t, p.Closed)
	})

	t.Run("double close is an invalid state error", func(t *testing.T) {
		p := &Purchase{Closed: true}
		err := p.Close()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("reopen requires a closed purchase", func(t *testing.T) {
		p := &Purchase{Closed: true}
		require.NoError(t, p.Reopen())
		assert.False(t, p.Closed)

		err := p.Reopen()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("ensure open guards mutations", func(t *testing.T) {
		p := &Purchase{}
		assert.NoError(t, p.EnsureOpen())
		p.Closed = true
		assert.True(t, dErrors.HasCode(p.EnsureOpen(), dErrors.CodeInvalidState))
	})
}

func TestTotals(t *testing.T) {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	t.Run("line total is quantity times unit price", func(t *testing.T) {
		assert.True(t, PriceLine(3, price("25.00")).Equal(price("75.00")))
	})

	t.Run("purchase total is the sum of line totals", func(t *testing.T) {
		p := &Purchase{Items: []*PurchaseItem{
			{TotalPrice: price("75.00")},
			{TotalPrice: price("20.00")},
		}}
		p.RecomputeTotal()
		assert.True(t, p.Total.Equal(price("95.00")))
	})

	t.Run("no items means a zero total", func(t *testing.T) {
		p := &Purchase{}
		p.RecomputeTotal()
		assert.True(t, p.Total.IsZero())
	})

	t.Run("decimal math keeps cents exact", func(t *testing.T) {
		total := decimal.Zero
		for i := 0; i < 10; i++ {
			total = total.Add(PriceLine(1, price("0.10")))
		}
		assert.True(t, total.Equal(price("1.00")))
	})
}
