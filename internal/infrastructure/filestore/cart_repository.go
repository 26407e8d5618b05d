package filestore

import (
	"path/filepath"
	"sync"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo carritos en un único JSON: mapa teléfono -> líneas.
type CartRepo struct {
	mu   sync.Mutex
	path string
}

// NewCartRepository construye el repo de archivos en el directorio dado.
func NewCartRepository(dir string) *CartRepo {
	return &CartRepo{path: filepath.Join(dir, cartsFile)}
}

// Load carga el carrito del teléfono (vacío si no existe).
func (r *CartRepo) Load(phone string) ([]entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	carts := map[string][]entity.CartItem{}
	if err := readJSON(r.path, &carts); err != nil {
		return nil, err
	}
	return carts[phone], nil
}

// Save reemplaza el carrito completo del teléfono.
func (r *CartRepo) Save(phone string, items []entity.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	carts := map[string][]entity.CartItem{}
	if err := readJSON(r.path, &carts); err != nil {
		return err
	}
	if items == nil {
		items = []entity.CartItem{}
	}
	carts[phone] = items
	return writeJSON(r.path, carts)
}

// Clear elimina el carrito del teléfono.
func (r *CartRepo) Clear(phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	carts := map[string][]entity.CartItem{}
	if err := readJSON(r.path, &carts); err != nil {
		return err
	}
	delete(carts, phone)
	return writeJSON(r.path, carts)
}
