package postgres

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlz/audiophile-api/internal/domain/order"
)

func TestCoalesceMoney_PrefersCurrentName(t *testing.T) {
	current := decimal.NewFromInt(50)
	legacy := decimal.NewFromInt(40)

	assert.True(t, current.Equal(coalesceMoney(&current, &legacy)))
	assert.True(t, legacy.Equal(coalesceMoney(nil, &legacy)))
	assert.True(t, decimal.Zero.Equal(coalesceMoney(nil, nil)))
}

func TestItemRecords_RoundTrip(t *testing.T) {
	items := []order.Item{
		{ID: 1, Name: "XX99 Mark II Headphones", Price: decimal.NewFromInt(2999), Quantity: 1, Image: "/images/xx99.jpg"},
		{ID: 4, Name: "YX1 Wireless Earphones", Price: decimal.RequireFromString("599.99"), Quantity: 2, Image: "/images/yx1.jpg"},
	}

	raw, err := json.Marshal(itemRecords(items))
	require.NoError(t, err)

	// Prices are stored as plain JSON numbers, matching historical records.
	assert.Contains(t, string(raw), `"price":2999`)
	assert.Contains(t, string(raw), `"price":599.99`)

	var recs []itemRecord
	require.NoError(t, json.Unmarshal(raw, &recs))
	back := domainItems(recs)

	require.Len(t, back, 2)
	assert.Equal(t, items[0].ID, back[0].ID)
	assert.Equal(t, items[0].Name, back[0].Name)
	assert.True(t, items[0].Price.Equal(back[0].Price))
	assert.Equal(t, items[1].Quantity, back[1].Quantity)
	assert.True(t, items[1].Price.Equal(back[1].Price))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("238521993"))
	assert.Equal(t, "238521993", *nullIfEmpty("238521993"))
}
