package ordering

import (
	"context"

	"github.com/taborder/ussd-api/internal/domain/entity"
)

// InvoiceNotifier puerto de salida para el envío de facturas post-checkout.
// El envío es best-effort: el caso de uso loguea el fallo y sigue.
type InvoiceNotifier interface {
	SendInvoice(ctx context.Context, order *entity.Order) error
}

// ComboCatalog puerto de lectura del catálogo de combos.
type ComboCatalog interface {
	Combos() []entity.Combo
	ByID(id int) (entity.Combo, bool)
}
