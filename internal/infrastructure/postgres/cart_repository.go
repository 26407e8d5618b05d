package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación PostgreSQL del carrito durable.
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador.
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// Load carga el carrito del teléfono (vacío si no existe).
func (r *CartRepo) Load(phone string) ([]entity.CartItem, error) {
	var itemsRaw []byte
	err := r.q.QueryRow(context.Background(),
		`SELECT items FROM ussd_carts WHERE phone = $1`, phone).Scan(&itemsRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var items []entity.CartItem
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}

// Save reemplaza el carrito completo del teléfono (upsert).
func (r *CartRepo) Save(phone string, items []entity.CartItem) error {
	if items == nil {
		items = []entity.CartItem{}
	}
	itemsRaw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	query := `
		INSERT INTO ussd_carts (phone, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(context.Background(), query, phone, itemsRaw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear elimina el carrito del teléfono.
func (r *CartRepo) Clear(phone string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM ussd_carts WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
