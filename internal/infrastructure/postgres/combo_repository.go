package postgres

import (
	"context"
	"fmt"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.ComboRepository = (*ComboRepo)(nil)

// ComboRepo lectura del catálogo de combos activos desde PostgreSQL.
type ComboRepo struct {
	q Querier
}

// NewComboRepository construye el adaptador.
func NewComboRepository(q Querier) *ComboRepo {
	return &ComboRepo{q: q}
}

// ListActive devuelve los combos activos en el orden del catálogo.
func (r *ComboRepo) ListActive() ([]entity.Combo, error) {
	query := `
		SELECT id, name, category, price, description, items, keywords
		FROM combo_specials WHERE is_active = true ORDER BY id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list combos: %w", err)
	}
	defer rows.Close()

	var list []entity.Combo
	for rows.Next() {
		var c entity.Combo
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Price, &c.Description, &c.Items, &c.Keywords); err != nil {
			return nil, fmt.Errorf("scan combo: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
