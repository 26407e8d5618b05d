package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/taborder/ussd-api/internal/domain/loyalty"
)

// RegistrationState estado de alta del suscriptor.
type RegistrationState string

const (
	// Unregistered nunca visto por el sistema.
	Unregistered RegistrationState = "unregistered"
	// AutoRegistered alta automática por CTT al primer request (sin fricción).
	AutoRegistered RegistrationState = "auto_registered"
	// FullyRegistered completó el registro con nombre (y opcionalmente zona).
	FullyRegistered RegistrationState = "fully_registered"
)

// User suscriptor identificado por número de teléfono.
// Invariante: LoyaltyTier es siempre función del TotalSpent acumulado;
// se recalcula en cada checkout y al completar el registro.
type User struct {
	Phone        string            `json:"phone"`
	CustomerName string            `json:"customer_name,omitempty"`
	CustomerArea string            `json:"customer_area,omitempty"`
	Country      string            `json:"country"`
	Currency     string            `json:"currency"`
	VendorID     string            `json:"vendor_id"`
	Lat          float64           `json:"lat"`
	Lon          float64           `json:"lon"`
	Registration RegistrationState `json:"registration_state"`

	LoyaltyPoints int             `json:"loyalty_points"`
	LoyaltyTier   loyalty.Tier    `json:"loyalty_tier"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TotalOrders   int             `json:"total_orders"`

	AssignedPickupPoint *PickupAssignment `json:"assigned_pickup_point,omitempty"`

	// Spaza móvil (micro-emprendedor que revende por USSD)
	IsMobileSpaza bool   `json:"is_mobile_spaza,omitempty"`
	SpazaID       string `json:"spaza_id,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`

	RegisteredAt  time.Time  `json:"registration_date"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
}

// IsFullyRegistered true si el usuario ya completó el registro manual.
func (u *User) IsFullyRegistered() bool {
	return u.Registration == FullyRegistered
}
