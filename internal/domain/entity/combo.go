package entity

import "github.com/shopspring/decimal"

// Combo oferta empaquetada del catálogo (conjunto fijo de productos, precio fijo).
// Catálogo de solo lectura: viene de la base de datos o de la lista estática de respaldo.
type Combo struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Category    string          `json:"category" yaml:"category"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Description string          `json:"description" yaml:"description"`
	Items       []string        `json:"items" yaml:"items"`
	Keywords    []string        `json:"keywords" yaml:"keywords"`
}

// ToCartItem convierte el combo en una línea de carrito con cantidad 1.
func (c Combo) ToCartItem() CartItem {
	return CartItem{
		ComboID:   c.ID,
		Name:      c.Name,
		UnitPrice: c.Price,
		Quantity:  1,
	}
}
