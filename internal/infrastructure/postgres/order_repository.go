package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación PostgreSQL de OrderRepository.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Append persiste una nueva orden (las órdenes nunca se modifican).
func (r *OrderRepo) Append(order *entity.Order) error {
	itemsRaw, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO ussd_orders (
			order_number, phone, items, subtotal, total, currency,
			payment_method, status, country, loyalty_points_earned, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		order.OrderNumber, order.Phone, itemsRaw, order.Subtotal, order.Total, order.Currency,
		order.PaymentMethod, order.Status, order.Country, order.LoyaltyPointsEarned, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// ListByPhone devuelve las órdenes del teléfono, la más reciente primero.
func (r *OrderRepo) ListByPhone(phone string) ([]*entity.Order, error) {
	query := `
		SELECT order_number, phone, items, subtotal, total, currency,
		       payment_method, status, country, loyalty_points_earned, created_at
		FROM ussd_orders WHERE phone = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, phone)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var itemsRaw []byte
		if err := rows.Scan(
			&o.OrderNumber, &o.Phone, &itemsRaw, &o.Subtotal, &o.Total, &o.Currency,
			&o.PaymentMethod, &o.Status, &o.Country, &o.LoyaltyPointsEarned, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
