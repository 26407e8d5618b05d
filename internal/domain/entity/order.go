package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order orden confirmada. Snapshot inmutable de líneas: append-only por
// teléfono, se consulta de la más nueva a la más vieja (índice 0 = última).
type Order struct {
	OrderNumber         string          `json:"order_number"`
	Phone               string          `json:"phone"`
	Items               []CartItem      `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
	PaymentMethod       string          `json:"payment_method"`
	Status              string          `json:"status"`
	Country             string          `json:"country"`
	LoyaltyPointsEarned int             `json:"loyalty_points_earned"`
	CreatedAt           time.Time       `json:"created_at"`
}
