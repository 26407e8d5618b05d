package ussd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/loyalty"
)

// money formatea un monto sin ceros de relleno (45, 99.5).
func money(d decimal.Decimal) string {
	return d.String()
}

func km(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// mainMenuEntries arma las opciones del menú principal según el estado de
// registro y el carrito. Una sola fuente de verdad para todas las variantes.
func mainMenuEntries(user *entity.User, cartCount int) []string {
	entries := []string{"Quick Order", "Search Items"}
	if cartCount > 0 {
		entries = append(entries, fmt.Sprintf("My Cart (%d items)", cartCount))
	}
	if user.IsFullyRegistered() {
		entries = append(entries,
			"Loyalty & Rewards",
			"Reorder Last",
			"Mobile Spaza (R6750/month)",
			"Register Pickup Point",
			"Customer Registration",
		)
	} else {
		entries = append(entries,
			"Complete Registration",
			"Reorder Last",
			"Mobile Spaza (R6750/month)",
			"Register Pickup Point",
		)
	}
	return entries
}

func renderMainMenu(geoCtx entity.GeoContext, user *entity.User, cartCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CON 🦁 TabOrder %s\n", geoCtx.Country)
	fmt.Fprintf(&b, "👑 %s | %d pts\n\n", user.LoyaltyTier, user.LoyaltyPoints)
	for i, entry := range mainMenuEntries(user, cartCount) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, entry)
	}
	b.WriteString("0. Exit")
	return b.String()
}

// renderQuickOrder lista los primeros cuatro combos del catálogo; el resto
// queda detrás de "More Options".
func renderQuickOrder(combos []entity.Combo, currency string) string {
	listed := combos
	if len(listed) > 4 {
		listed = listed[:4]
	}
	lo, hi := priceRange(combos)

	var b strings.Builder
	b.WriteString("CON 🛒 Quick Order\n")
	fmt.Fprintf(&b, "%s%s-%s%s combos\n\n", currency, money(lo), currency, money(hi))
	for _, c := range listed {
		fmt.Fprintf(&b, "%d. %s - %s%s\n", c.ID, c.Name, currency, money(c.Price))
	}
	b.WriteString("5. More Options\n0. Back")
	return b.String()
}

func renderMoreCombos(combos []entity.Combo, currency string) string {
	var b strings.Builder
	b.WriteString("CON 🛒 More Combos\n\n")
	for _, c := range combos {
		if c.ID <= 4 {
			continue
		}
		fmt.Fprintf(&b, "%d. %s - %s%s\n", c.ID, c.Name, currency, money(c.Price))
	}
	b.WriteString("\n1-6. Add to cart\n8. Search by name\n0. Back")
	return b.String()
}

func priceRange(combos []entity.Combo) (lo, hi decimal.Decimal) {
	if len(combos) == 0 {
		return decimal.Zero, decimal.Zero
	}
	lo, hi = combos[0].Price, combos[0].Price
	for _, c := range combos[1:] {
		if c.Price.LessThan(lo) {
			lo = c.Price
		}
		if c.Price.GreaterThan(hi) {
			hi = c.Price
		}
	}
	return lo, hi
}

func renderAddedToCart(line entity.CartItem, total decimal.Decimal, currency string) string {
	return fmt.Sprintf(`CON ✅ Added to Cart!
%s - %s%s

Cart Total: %s%s

1. Checkout Now
2. Continue Shopping
3. View Cart
0. Back`, line.Name, currency, money(line.UnitPrice), currency, money(total))
}

const emptyCartPrompt = "CON 🛒 Your cart is empty\n\n1. Start Shopping\n0. Back"

func renderCartView(cart []entity.CartItem, currency string) string {
	if len(cart) == 0 {
		return emptyCartPrompt
	}
	var b strings.Builder
	fmt.Fprintf(&b, "CON 🛒 Your Cart (%d items)\n", len(cart))
	for i, item := range cart {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s - %s%s", i+1, item.Name, currency, money(item.UnitPrice))
		if item.Quantity > 1 {
			fmt.Fprintf(&b, " x%d", item.Quantity)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal: %s%s\n\n1. Checkout\n2. Remove Item\n0. Back", currency, money(entity.CartTotal(cart)))
	return b.String()
}

func renderRemovePrompt(cart []entity.CartItem) string {
	if len(cart) == 0 {
		return emptyCartPrompt
	}
	var b strings.Builder
	b.WriteString("CON 🗑 Remove Item\n")
	for i, item := range cart {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
	}
	fmt.Fprintf(&b, "\n1-%d. Remove\n0. Back", len(cart))
	return b.String()
}

func renderCheckoutMenu(total decimal.Decimal, currency string) string {
	return fmt.Sprintf(`CON 💳 Checkout
Total: %s%s

Payment Options:
1. Cash on Delivery
2. Mobile Money
3. USSD Payment
0. Back to Cart`, currency, money(total))
}

func renderMobileMoneyConfirm(total decimal.Decimal, currency string) string {
	return fmt.Sprintf("CON 💰 Mobile Money Payment\nTotal: %s%s\n\n1. Confirm Payment\n0. Back", currency, money(total))
}

func renderOrderConfirmed(order *entity.Order, tier loyalty.Tier) string {
	return fmt.Sprintf(`END ✅ ORDER CONFIRMED!
Order: %s
Total: %s%s
Payment: %s

👑 +%d loyalty points
%s %s Status

📱 SMS invoice sent!
🚚 Delivery: 2-4 hours`,
		order.OrderNumber, order.Currency, money(order.Total), order.PaymentMethod,
		order.LoyaltyPointsEarned, loyalty.Medal(tier), tier)
}

const searchPrompt = `CON 🔍 Search Products
Type what you need:

Examples:
• baby
• cleaning
• student

0. Back`

// Variante que muestra la vuelta atrás desde un resultado de búsqueda.
const searchPromptBack = `CON 🔍 Search Products
Type keywords:

Examples:
• baby, cleaning, student
• noodles, meat, milk
• breakfast, family

0. Back`

func renderSearchResults(matches []entity.Combo, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CON 🎯 Found %d matches:\n", len(matches))
	for i, c := range matches {
		if i == 4 {
			break
		}
		fmt.Fprintf(&b, "%d. %s - %s%s\n", i+1, c.Name, currency, money(c.Price))
	}
	b.WriteString("\n1-4. Add to cart\n0. Back")
	return b.String()
}

func renderLoyaltyStatus(user *entity.User) string {
	return fmt.Sprintf(`CON 👑 Loyalty Status
Tier: %s
Points: %d

Total Spent: R%s
Next Tier: R%s more

1. Points History
2. Redeem Points
0. Back`, user.LoyaltyTier, user.LoyaltyPoints, money(user.TotalSpent), money(loyalty.NextTierGap(user.TotalSpent)))
}

func renderLastOrder(order *entity.Order) string {
	return fmt.Sprintf(`CON 🔄 Reorder Last Order
Order: %s
Total: %s%s

1. Reorder Same Items
2. View Order Details
0. Back`, order.OrderNumber, order.Currency, money(order.Total))
}

func renderReordered(count int, total decimal.Decimal, currency string) string {
	return fmt.Sprintf(`CON ✅ Items Added to Cart
%d items from last order

Total: %s%s

1. Checkout
2. Modify Cart
0. Back`, count, currency, money(total))
}

func renderSpazaDashboard(user *entity.User, currency string) string {
	commission := user.TotalSpent.Mul(decimal.NewFromFloat(0.10))
	progress := commission.InexactFloat64() / 6750 * 100
	return fmt.Sprintf(`CON 📊 Spaza Dashboard
ID: %s | Owner: %s

📈 This Month:
Orders: %d
Revenue: %s%s
Commission: %s%.0f
Progress: %.1f%% of %s6750

1. View Detailed Stats
2. Customer List
3. Earnings History
0. Back`,
		user.SpazaID, user.OwnerName, user.TotalOrders,
		currency, money(user.TotalSpent),
		currency, commission.InexactFloat64(), progress, currency)
}

const mobileSpazaPrompt = `CON 🦁 Become Mobile Spaza
Earn R6750/month guaranteed!

Join 10,000+ successful entrepreneurs

Enter your name:
0. Back`

const stationarySpazaPrompt = `CON 🏪 Register Pickup Point
Become a stationary delivery hub
Earn commission on deliveries

Enter your shop name:
0. Back`

const customerRegPrompt = `CON 👤 Customer Registration
Get personalized service & delivery

Enter your full name:
0. Back`

const completeRegPrompt = `CON 📝 Complete Your Registration
Get loyalty benefits & delivery preferences

Enter your full name:
0. Back`

func renderEarningsPotential(name string, customers int, daily, monthly float64) string {
	return fmt.Sprintf(`CON 📊 Earnings Potential
Name: %s

Estimated Customers: %d/day
Daily Earnings: R%.0f
Monthly Target: R%.0f

1. Complete Registration
0. Back`, name, customers, daily, monthly)
}

func renderCustomerAreaPrompt(name string) string {
	return fmt.Sprintf(`CON 👤 Customer Registration
Name: %s

Enter your area/suburb:
(e.g., Soweto, Alexandra)
0. Back`, name)
}

const exitResponse = "END 🦁 Thank you for using TabOrder!\nAfrica's #1 commerce platform"

const invalidOption = "CON Invalid option\n\n0. Main Menu"
