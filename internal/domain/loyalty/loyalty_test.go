package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		spent string
		want  Tier
	}{
		{"0", Bronze},
		{"499.99", Bronze},
		{"500", Silver},
		{"1999.99", Silver},
		{"2000", Gold},
		{"4999.99", Gold},
		{"5000", Platinum},
		{"100000", Platinum},
	}
	for _, c := range cases {
		spent, _ := decimal.NewFromString(c.spent)
		assert.Equal(t, c.want, TierFor(spent), "gasto acumulado %s", c.spent)
	}
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, "1", Multiplier(Bronze).String())
	assert.Equal(t, "1.5", Multiplier(Silver).String())
	assert.Equal(t, "2", Multiplier(Gold).String())
	assert.Equal(t, "3", Multiplier(Platinum).String())
}

func TestPointsEarned(t *testing.T) {
	subtotal := decimal.NewFromInt(45)

	// floor(45 × 0.1) = 4 puntos base; el multiplicador se aplica después
	// y se vuelve a truncar.
	assert.Equal(t, 4, PointsEarned(subtotal, Bronze))
	assert.Equal(t, 6, PointsEarned(subtotal, Silver), "floor(4 × 1.5) = 6")
	assert.Equal(t, 8, PointsEarned(subtotal, Gold))
	assert.Equal(t, 12, PointsEarned(subtotal, Platinum))

	assert.Equal(t, 0, PointsEarned(decimal.NewFromInt(9), Platinum), "compras menores a 10 no generan puntos")
}

func TestNextTierGap(t *testing.T) {
	assert.Equal(t, "500", NextTierGap(decimal.Zero).String())
	assert.Equal(t, "50", NextTierGap(decimal.NewFromInt(450)).String())
	assert.Equal(t, "1500", NextTierGap(decimal.NewFromInt(500)).String())
	assert.Equal(t, "0", NextTierGap(decimal.NewFromInt(5000)).String(), "Platinum no tiene siguiente tier")
}

func TestMedal(t *testing.T) {
	assert.Equal(t, "🥉", Medal(Bronze))
	assert.Equal(t, "💎", Medal(Platinum))
}
