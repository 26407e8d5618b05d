package entity

import "github.com/shopspring/decimal"

// CartItem línea de carrito. Se persiste tanto en el carrito durable como
// dentro del snapshot inmutable de cada orden.
type CartItem struct {
	ComboID   int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal precio × cantidad.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal suma de todas las líneas.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
