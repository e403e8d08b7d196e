package cart

import (
	"context"

	"eggcelent-store/internal/order"
	"eggcelent-store/internal/storage"
)

const (
	CartKey   = "@eggcelent_cart"
	ordersKey = "@eggcelent_orders"
)

// OrdersKey is the storage key of an owner's order history; the empty owner
// is the signed-out guest.
func OrdersKey(owner string) string {
	if owner == "" {
		return ordersKey
	}
	return ordersKey + ":" + owner
}

type repository struct {
	store storage.Store
}

func (r *repository) loadCart(ctx context.Context) (Cart, error) {
	var lines []Line
	if _, err := storage.LoadJSON(ctx, r.store, CartKey, &lines); err != nil {
		return Cart{}, err
	}
	return normalize(lines), nil
}

func (r *repository) loadOrders(ctx context.Context, owner string) ([]order.Order, error) {
	var orders []order.Order
	if _, err := storage.LoadJSON(ctx, r.store, OrdersKey(owner), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func cartBatch(c Cart) (*storage.Batch, error) {
	if c.IsEmpty() {
		return storage.NewBatch().Delete(CartKey), nil
	}
	raw, err := storage.EncodeJSON(c.Lines)
	if err != nil {
		return nil, err
	}
	return storage.NewBatch().Set(CartKey, raw), nil
}

// checkoutBatch writes the new history and drops the cart in one batch.
func checkoutBatch(owner string, orders []order.Order) (*storage.Batch, error) {
	raw, err := storage.EncodeJSON(orders)
	if err != nil {
		return nil, err
	}
	return storage.NewBatch().Set(OrdersKey(owner), raw).Delete(CartKey), nil
}
