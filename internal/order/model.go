package order

import (
	"time"

	"eggcelent-store/internal/product"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusPreparing: "Preparing",
	StatusReady:     "Ready",
	StatusDelivered: "Delivered",
	StatusCancelled: "Cancelled",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name; unknown statuses read as confirmed.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusConfirmed]
}

// Item is one product line frozen at checkout.
type Item struct {
	product.Product
	Quantity int `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID           string          `json:"id"`
	Items        []Item          `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Total        decimal.Decimal `json:"total"`
	Status       Status          `json:"status"`
	DeliveryInfo DeliveryInfo    `json:"deliveryInfo"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// New builds a confirmed order over a copy of items. The fee is charged only
// when the items cost something.
func New(id string, items []Item, fee decimal.Decimal, info DeliveryInfo, now time.Time) Order {
	frozen := cloneItems(items)

	subtotal := decimal.Zero
	for _, it := range frozen {
		subtotal = subtotal.Add(it.Subtotal())
	}
	charged := DeliveryFee(subtotal, fee)

	return Order{
		ID:           id,
		Items:        frozen,
		Subtotal:     subtotal,
		DeliveryFee:  charged,
		Total:        subtotal.Add(charged),
		Status:       StatusConfirmed,
		DeliveryInfo: info,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DeliveryFee returns fee for a positive subtotal and zero otherwise.
func DeliveryFee(subtotal, fee decimal.Decimal) decimal.Decimal {
	if subtotal.IsPositive() {
		return fee
	}
	return decimal.Zero
}

// Clone returns a deep copy so callers cannot reach the stored items.
func (o Order) Clone() Order {
	o.Items = cloneItems(o.Items)
	return o
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Highlights = append([]string(nil), it.Highlights...)
		out[i] = it
	}
	return out
}

// Units is the number of product units in the order.
func (o Order) Units() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
