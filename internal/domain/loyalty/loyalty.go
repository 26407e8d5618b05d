package loyalty

import "github.com/shopspring/decimal"

// Tier clasificación de lealtad. Controla el multiplicador de acumulación de puntos.
type Tier string

const (
	Bronze   Tier = "Bronze"
	Silver   Tier = "Silver"
	Gold     Tier = "Gold"
	Platinum Tier = "Platinum"
)

// Bonos de puntos por hito de registro.
const (
	WelcomeBonus          = 10 // alta automática por CTT
	CompleteRegBonus      = 40 // completar registro (usuario auto-registrado)
	FullRegistrationBonus = 50 // registro de cliente con nombre y zona
)

// Umbrales de gasto acumulado por tier. TierFor es una función escalonada
// pura y monótona de total_spent; se recalcula en cada checkout.
var (
	silverThreshold   = decimal.NewFromInt(500)
	goldThreshold     = decimal.NewFromInt(2000)
	platinumThreshold = decimal.NewFromInt(5000)
)

// TierFor devuelve el tier correspondiente al gasto acumulado.
func TierFor(totalSpent decimal.Decimal) Tier {
	switch {
	case totalSpent.GreaterThanOrEqual(platinumThreshold):
		return Platinum
	case totalSpent.GreaterThanOrEqual(goldThreshold):
		return Gold
	case totalSpent.GreaterThanOrEqual(silverThreshold):
		return Silver
	default:
		return Bronze
	}
}

// Multiplier multiplicador de puntos del tier.
func Multiplier(t Tier) decimal.Decimal {
	switch t {
	case Silver:
		return decimal.NewFromFloat(1.5)
	case Gold:
		return decimal.NewFromInt(2)
	case Platinum:
		return decimal.NewFromInt(3)
	default:
		return decimal.NewFromInt(1)
	}
}

// PointsEarned puntos ganados en una compra: floor(subtotal × 0.1) como base
// (1 punto por cada 10 gastados) y luego floor(base × multiplicador del tier).
func PointsEarned(subtotal decimal.Decimal, t Tier) int {
	base := subtotal.Mul(decimal.NewFromFloat(0.1)).IntPart()
	earned := decimal.NewFromInt(base).Mul(Multiplier(t)).IntPart()
	return int(earned)
}

// NextTierGap cuánto falta gastar para alcanzar el siguiente tier.
// Platinum no tiene siguiente: devuelve cero.
func NextTierGap(totalSpent decimal.Decimal) decimal.Decimal {
	var next decimal.Decimal
	switch TierFor(totalSpent) {
	case Bronze:
		next = silverThreshold
	case Silver:
		next = goldThreshold
	case Gold:
		next = platinumThreshold
	default:
		return decimal.Zero
	}
	gap := next.Sub(totalSpent)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}

// Medal emoji de medalla del tier (para la confirmación de orden).
func Medal(t Tier) string {
	switch t {
	case Silver:
		return "🥈"
	case Gold:
		return "🥇"
	case Platinum:
		return "💎"
	default:
		return "🥉"
	}
}
