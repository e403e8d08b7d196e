package cart

import "eggcelent-store/internal/order"

func mapLinesToOrderItems(lines []Line) []order.Item {
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			Product:  l.Product,
			Quantity: l.Quantity,
		})
	}
	return items
}
