package repository

import "github.com/taborder/ussd-api/internal/domain/entity"

// ComboRepository puerto de lectura del catálogo de combos activos.
// El proveedor debe devolver datos aunque la base durable esté caída
// (lista estática de respaldo).
type ComboRepository interface {
	ListActive() ([]entity.Combo, error)
}
