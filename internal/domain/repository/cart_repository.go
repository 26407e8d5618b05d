package repository

import "github.com/taborder/ussd-api/internal/domain/entity"

// CartRepository puerto de persistencia del carrito durable (sobrevive al
// reinicio de la sesión USSD). Clave: teléfono.
type CartRepository interface {
	Load(phone string) ([]entity.CartItem, error)
	Save(phone string, items []entity.CartItem) error
	Clear(phone string) error
}
