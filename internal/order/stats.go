package order

import "github.com/shopspring/decimal"

type Stats struct {
	Orders int
	Units  int
	Eggs   int
	Spent  decimal.Decimal
}

func Summarize(orders []Order) Stats {
	st := Stats{Orders: len(orders), Spent: decimal.Zero}
	for _, o := range orders {
		st.Spent = st.Spent.Add(o.Total)
		for _, it := range o.Items {
			st.Units += it.Quantity
			st.Eggs += it.Eggs * it.Quantity
		}
	}
	return st
}
