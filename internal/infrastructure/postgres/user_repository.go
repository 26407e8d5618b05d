package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación PostgreSQL de UserRepository.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Get obtiene un usuario por teléfono (nil, nil si no existe).
func (r *UserRepo) Get(phone string) (*entity.User, error) {
	query := `
		SELECT phone, customer_name, customer_area, country, currency, vendor_id,
		       lat, lon, registration_state, loyalty_points, loyalty_tier,
		       total_spent, total_orders, pickup_point, is_mobile_spaza, spaza_id,
		       owner_name, registered_at, last_order_date
		FROM ussd_users WHERE phone = $1`
	var u entity.User
	var pickupRaw []byte
	err := r.q.QueryRow(context.Background(), query, phone).Scan(
		&u.Phone, &u.CustomerName, &u.CustomerArea, &u.Country, &u.Currency, &u.VendorID,
		&u.Lat, &u.Lon, &u.Registration, &u.LoyaltyPoints, &u.LoyaltyTier,
		&u.TotalSpent, &u.TotalOrders, &pickupRaw, &u.IsMobileSpaza, &u.SpazaID,
		&u.OwnerName, &u.RegisteredAt, &u.LastOrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(pickupRaw) > 0 {
		var pa entity.PickupAssignment
		if err := json.Unmarshal(pickupRaw, &pa); err != nil {
			return nil, fmt.Errorf("unmarshal pickup_point: %w", err)
		}
		u.AssignedPickupPoint = &pa
	}
	return &u, nil
}

// Save inserta o actualiza el usuario (upsert por teléfono).
func (r *UserRepo) Save(user *entity.User) error {
	var pickupRaw []byte
	if user.AssignedPickupPoint != nil {
		var err error
		pickupRaw, err = json.Marshal(user.AssignedPickupPoint)
		if err != nil {
			return fmt.Errorf("marshal pickup_point: %w", err)
		}
	}
	query := `
		INSERT INTO ussd_users (
			phone, customer_name, customer_area, country, currency, vendor_id,
			lat, lon, registration_state, loyalty_points, loyalty_tier,
			total_spent, total_orders, pickup_point, is_mobile_spaza, spaza_id,
			owner_name, registered_at, last_order_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (phone) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			customer_area = EXCLUDED.customer_area,
			country = EXCLUDED.country,
			currency = EXCLUDED.currency,
			vendor_id = EXCLUDED.vendor_id,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			registration_state = EXCLUDED.registration_state,
			loyalty_points = EXCLUDED.loyalty_points,
			loyalty_tier = EXCLUDED.loyalty_tier,
			total_spent = EXCLUDED.total_spent,
			total_orders = EXCLUDED.total_orders,
			pickup_point = EXCLUDED.pickup_point,
			is_mobile_spaza = EXCLUDED.is_mobile_spaza,
			spaza_id = EXCLUDED.spaza_id,
			owner_name = EXCLUDED.owner_name,
			last_order_date = EXCLUDED.last_order_date`
	_, err := r.q.Exec(context.Background(), query,
		user.Phone, user.CustomerName, user.CustomerArea, user.Country, user.Currency, user.VendorID,
		user.Lat, user.Lon, user.Registration, user.LoyaltyPoints, user.LoyaltyTier,
		user.TotalSpent, user.TotalOrders, pickupRaw, user.IsMobileSpaza, user.SpazaID,
		user.OwnerName, user.RegisteredAt, user.LastOrderDate,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Exists verifica si el teléfono ya está registrado.
func (r *UserRepo) Exists(phone string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM ussd_users WHERE phone = $1)`, phone).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists user: %w", err)
	}
	return exists, nil
}
