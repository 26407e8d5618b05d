package repository

import "github.com/taborder/ussd-api/internal/domain/entity"

// OrderRepository puerto de persistencia para órdenes.
// Append-only por teléfono; ListByPhone devuelve de la más nueva a la más
// vieja (índice 0 = orden más reciente).
type OrderRepository interface {
	Append(order *entity.Order) error
	ListByPhone(phone string) ([]*entity.Order, error)
}
