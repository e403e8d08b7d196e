package cart

import (
	"eggcelent-store/internal/product"

	"github.com/shopspring/decimal"
)

// Line is a product snapshot taken when it was first added, plus a quantity
// of at least one.
type Line struct {
	product.Product
	Quantity int `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds lines in the order their products were first added. At most one
// line exists per product id. Totals are always computed from the lines.
type Cart struct {
	Lines []Line
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) index(productID string) int {
	for i, l := range c.Lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	lines := make([]Line, len(c.Lines))
	for i, l := range c.Lines {
		l.Highlights = append([]string(nil), l.Highlights...)
		lines[i] = l
	}
	return Cart{Lines: lines}
}

// add merges quantity into the product's line, appending a line the first
// time the product is seen.
func (c Cart) add(p product.Product, quantity int) Cart {
	next := c.clone()
	if i := next.index(p.ID); i >= 0 {
		next.Lines[i].Quantity += quantity
		return next
	}
	p.Highlights = append([]string(nil), p.Highlights...)
	next.Lines = append(next.Lines, Line{Product: p, Quantity: quantity})
	return next
}

func (c Cart) remove(productID string) (Cart, bool) {
	i := c.index(productID)
	if i < 0 {
		return c, false
	}
	next := c.clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	return next, true
}

func (c Cart) setQuantity(productID string, quantity int) (Cart, bool) {
	i := c.index(productID)
	if i < 0 {
		return c, false
	}
	next := c.clone()
	next.Lines[i].Quantity = quantity
	return next, true
}

// normalize reapplies the cart rules to data read back from storage:
// lines for the same product merge, lines without an id or quantity drop.
func normalize(lines []Line) Cart {
	var c Cart
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		c = c.add(l.Product, l.Quantity)
	}
	return c
}
