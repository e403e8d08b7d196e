package order

import (
	"encoding/json"
	"testing"
	"time"

	"eggcelent-store/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, price string, qty, eggs int) Item {
	return Item{
		Product: product.Product{
			ID:         id,
			Name:       "Egg " + id,
			Price:      decimal.RequireFromString(price),
			Eggs:       eggs,
			Highlights: []string{"fresh"},
		},
		Quantity: qty,
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	info := DeliveryInfo{Name: "A", Phone: "1", Address: "X"}
	items := []Item{item("1", "5.99", 2, 12)}

	o := New("ORD-1", items, decimal.NewFromInt(50), info, now)

	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, "11.98", o.Subtotal.String())
	assert.Equal(t, "50", o.DeliveryFee.String())
	assert.Equal(t, "61.98", o.Total.String())
	assert.Equal(t, info, o.DeliveryInfo)
	assert.Equal(t, now, o.CreatedAt)
	assert.Equal(t, now, o.UpdatedAt)
	assert.Equal(t, 2, o.Units())

	t.Run("ItemsAreCopied", func(t *testing.T) {
		items[0].Quantity = 99
		items[0].Highlights[0] = "changed"

		assert.Equal(t, 2, o.Items[0].Quantity)
		assert.Equal(t, "fresh", o.Items[0].Highlights[0])
	})

	t.Run("NoFeeForFreeOrder", func(t *testing.T) {
		free := New("ORD-2", []Item{item("9", "0", 1, 0)}, decimal.NewFromInt(50), info, now)
		assert.True(t, free.DeliveryFee.IsZero())
		assert.True(t, free.Total.IsZero())
	})
}

func TestDeliveryFee(t *testing.T) {
	fee := decimal.NewFromInt(50)
	assert.Equal(t, "50", DeliveryFee(decimal.RequireFromString("0.01"), fee).String())
	assert.True(t, DeliveryFee(decimal.Zero, fee).IsZero())
}

func TestOrder_Clone(t *testing.T) {
	o := New("ORD-1", []Item{item("1", "1", 1, 6)}, decimal.Zero, DeliveryInfo{}, time.Now())
	c := o.Clone()

	c.Items[0].Quantity = 5
	c.Items[0].Highlights[0] = "changed"

	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "fresh", o.Items[0].Highlights[0])
}

func TestOrder_JSONShape(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o := New("ORD-1", []Item{item("1", "5.99", 1, 12)}, decimal.NewFromInt(50), DeliveryInfo{Name: "A", Phone: "1", Address: "X"}, now)

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "confirmed", raw["status"])

	items := raw["items"].([]any)
	first := items[0].(map[string]any)
	// product fields sit next to the quantity
	assert.Equal(t, "1", first["id"])
	assert.Equal(t, float64(1), first["quantity"])

	var back Order
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, o.Total.Equal(back.Total))
	assert.Equal(t, o.Items[0].ID, back.Items[0].ID)
	assert.True(t, o.CreatedAt.Equal(back.CreatedAt))
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDelivered.Valid())
	assert.False(t, Status("lost").Valid())
	assert.Equal(t, "Preparing", StatusPreparing.Label())
	assert.Equal(t, "Confirmed", Status("lost").Label())
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	orders := []Order{
		New("ORD-2", []Item{item("1", "5.99", 2, 12), item("2", "3.49", 1, 6)}, decimal.NewFromInt(50), DeliveryInfo{}, now),
		New("ORD-1", []Item{item("3", "13.99", 1, 30)}, decimal.NewFromInt(50), DeliveryInfo{}, now),
	}

	st := Summarize(orders)
	assert.Equal(t, 2, st.Orders)
	assert.Equal(t, 4, st.Units)
	assert.Equal(t, 12*2+6+30, st.Eggs)
	assert.Equal(t, "129.46", st.Spent.String())

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Orders)
	assert.True(t, empty.Spent.IsZero())
}
