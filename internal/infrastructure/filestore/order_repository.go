package filestore

import (
	"path/filepath"
	"sync"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes en un único JSON: mapa teléfono -> lista de órdenes.
// En el archivo se guardan en orden de llegada; ListByPhone las invierte
// para mantener el contrato "más reciente primero".
type OrderRepo struct {
	mu   sync.Mutex
	path string
}

// NewOrderRepository construye el repo de archivos en el directorio dado.
func NewOrderRepository(dir string) *OrderRepo {
	return &OrderRepo{path: filepath.Join(dir, ordersFile)}
}

// Append agrega la orden a la lista del teléfono.
func (r *OrderRepo) Append(order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := map[string][]*entity.Order{}
	if err := readJSON(r.path, &orders); err != nil {
		return err
	}
	orders[order.Phone] = append(orders[order.Phone], order)
	return writeJSON(r.path, orders)
}

// ListByPhone devuelve las órdenes del teléfono, la más reciente primero.
func (r *OrderRepo) ListByPhone(phone string) ([]*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := map[string][]*entity.Order{}
	if err := readJSON(r.path, &orders); err != nil {
		return nil, err
	}
	stored := orders[phone]
	out := make([]*entity.Order, len(stored))
	for i, o := range stored {
		out[len(stored)-1-i] = o
	}
	return out, nil
}
