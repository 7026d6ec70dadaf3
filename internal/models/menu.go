package models

// MenuItem is a single item on the menu. Items are created once when
// the catalog is initialized and never mutated.
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderLine is one menu item plus a quantity within an order.
// Quantity is not validated here; a zero or negative quantity simply
// produces a zero or negative line total.
type OrderLine struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// LineTotal returns the price of the line
func (l OrderLine) LineTotal() float64 {
	return l.Item.Price * float64(l.Quantity)
}
