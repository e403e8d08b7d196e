package cart

import (
	"time"

	"eggcelent-store/internal/order"

	"github.com/shopspring/decimal"
)

// state is everything the engine owns; transitions return a new state.
type state struct {
	cart   Cart
	orders []order.Order
}

// checkout turns the cart into an order at the head of the history and
// empties the cart, as one step.
func checkout(s state, info order.DeliveryInfo, fee decimal.Decimal, id string, now time.Time) (state, order.Order, error) {
	if s.cart.IsEmpty() {
		return s, order.Order{}, ErrCartEmpty
	}

	o := order.New(id, mapLinesToOrderItems(s.cart.Lines), fee, info, now)

	orders := make([]order.Order, 0, len(s.orders)+1)
	orders = append(orders, o)
	orders = append(orders, s.orders...)

	return state{cart: Cart{}, orders: orders}, o, nil
}
