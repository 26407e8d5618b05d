package ussd

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taborder/ussd-api/internal/application/ordering"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/geo"
	"github.com/taborder/ussd-api/internal/infrastructure/catalog"
	"github.com/taborder/ussd-api/internal/infrastructure/filestore"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

type noopNotifier struct{}

func (noopNotifier) SendInvoice(context.Context, *entity.Order) error { return nil }

func newEngine(t *testing.T) (*Engine, *storage.Gateway) {
	t.Helper()
	dir := t.TempDir()
	gw := storage.New(storage.Backends{
		Users:        filestore.NewUserRepository(dir),
		Orders:       filestore.NewOrderRepository(dir),
		Sessions:     filestore.NewSessionRepository(dir),
		CartFallback: filestore.NewCartRepository(dir),
	}, false, logger.Nop())

	cat := catalog.New(nil, "", logger.Nop())
	cart := ordering.NewCartUseCase(gw, cat, logger.Nop())
	checkout := ordering.NewCheckoutUseCase(gw, cart, noopNotifier{}, logger.Nop())
	sessions := NewSessionManager(gw, 5*time.Minute, logger.Nop())
	return NewEngine(sessions, geo.NewResolver(geo.FixedLocator{}), cat, cart, checkout, gw, logger.Nop()), gw
}

const testPhone = "+27821234567"

func handle(e *Engine, text string) string {
	return e.Handle(context.Background(), "s1", testPhone, text)
}

// ── Menú principal y alta automática ─────────────────────────────────────────

func TestMainMenuAutoRegisters(t *testing.T) {
	e, gw := newEngine(t)

	reply := handle(e, "")
	assert.True(t, strings.HasPrefix(reply, "CON 🦁 TabOrder South Africa"), "el encabezado lleva el país resuelto por prefijo")
	assert.Contains(t, reply, "Bronze | 10 pts", "el alta automática acredita el bono de bienvenida")
	assert.Contains(t, reply, "1. Quick Order")
	assert.Contains(t, reply, "3. Complete Registration", "usuario auto-registrado ve completar registro")
	assert.NotContains(t, reply, "My Cart", "sin carrito no se lista la entrada del carrito")
	assert.Contains(t, reply, "0. Exit")

	user := gw.GetUser(testPhone)
	require.NotNil(t, user, "el primer request da de alta al usuario")
	assert.Equal(t, entity.AutoRegistered, user.Registration)
	assert.Equal(t, 10, user.LoyaltyPoints)
}

func TestMainMenuFullyRegisteredVariant(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "")
	user := gw.GetUser(testPhone)
	user.Registration = entity.FullyRegistered
	gw.SaveUser(user)

	reply := handle(e, "")
	assert.Contains(t, reply, "3. Loyalty & Rewards", "usuario registrado ve lealtad en vez de completar registro")
	assert.Contains(t, reply, "7. Customer Registration")
}

func TestMainMenuShowsCartCount(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "1*1")
	reply := handle(e, "")
	assert.Contains(t, reply, "3. My Cart (1 items)")
}

// ── Quick Order ──────────────────────────────────────────────────────────────

func TestQuickOrderMenu(t *testing.T) {
	e, _ := newEngine(t)
	reply := handle(e, "1")
	assert.True(t, strings.HasPrefix(reply, "CON 🛒 Quick Order"))
	assert.Contains(t, reply, "R35-R120 combos", "el rango sale de los precios del catálogo")
	assert.Contains(t, reply, "1. Essential Groceries - R45")
	assert.Contains(t, reply, "4. Household Cleaning - R65")
	assert.Contains(t, reply, "5. More Options")
}

func TestDirectAddToCart(t *testing.T) {
	e, gw := newEngine(t)
	reply := handle(e, "1*1")
	assert.True(t, strings.HasPrefix(reply, "CON ✅ Added to Cart!"))
	assert.Contains(t, reply, "Essential Groceries - R45")
	assert.Contains(t, reply, "Cart Total: R45")
	assert.Contains(t, reply, "1. Checkout Now")

	// El carrito queda replicado en el almacenamiento durable.
	require.Len(t, gw.LoadCart(testPhone), 1)
}

func TestMoreCombosPage(t *testing.T) {
	e, _ := newEngine(t)
	reply := handle(e, "1*5")
	assert.True(t, strings.HasPrefix(reply, "CON 🛒 More Combos"))
	assert.Contains(t, reply, "5. Student Survival Kit - R35")
	assert.Contains(t, reply, "6. Breakfast Special - R40")
}

func TestInvalidComboReprompts(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, "CON Invalid option\n\n0. Main Menu", handle(e, "1*42"))
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func TestCheckoutCashOnDelivery(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "1*2") // Family Pack, R120

	reply := handle(e, "1*2*1")
	assert.True(t, strings.HasPrefix(reply, "CON 💳 Checkout"), "el primer *1 abre el menú de pagos")
	assert.Contains(t, reply, "Total: R120")

	reply = handle(e, "1*2*1*1")
	assert.True(t, strings.HasPrefix(reply, "END ✅ ORDER CONFIRMED!"))
	assert.Contains(t, reply, "Payment: Cash on Delivery")
	assert.Contains(t, reply, "+12 loyalty points")
	assert.Contains(t, reply, "🥉 Bronze Status")

	// La orden quedó persistida y el carrito limpio.
	require.Len(t, gw.OrdersByPhone(testPhone), 1)
	assert.Empty(t, gw.LoadCart(testPhone))
	user := gw.GetUser(testPhone)
	assert.Equal(t, 22, user.LoyaltyPoints, "bienvenida 10 + 12 de la compra")
	assert.Equal(t, "120", user.TotalSpent.String())
}

func TestCheckoutMobileMoneyNeedsConfirmation(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "1*1")

	reply := handle(e, "1*1*1*2")
	assert.True(t, strings.HasPrefix(reply, "CON 💰 Mobile Money Payment"), "mobile money pide confirmación")

	reply = handle(e, "1*1*1*2*1")
	assert.True(t, strings.HasPrefix(reply, "END ✅ ORDER CONFIRMED!"))
	assert.Contains(t, reply, "Payment: Mobile Money")
}

func TestCheckoutEmptyCart(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "")
	assert.Equal(t, "END ❌ Your cart is empty!", handle(e, "5*1"))
}

// ── Búsqueda ─────────────────────────────────────────────────────────────────

func TestSearchFlow(t *testing.T) {
	e, _ := newEngine(t)

	reply := handle(e, "2")
	assert.True(t, strings.HasPrefix(reply, "CON 🔍 Search Products"))

	reply = handle(e, "2*b")
	assert.True(t, strings.HasPrefix(reply, "CON 🔍 Search too short"), "consultas de un carácter se rechazan")

	reply = handle(e, "2*baby")
	assert.True(t, strings.HasPrefix(reply, "CON 🎯 Found"))
	assert.Contains(t, reply, "1. Baby Care Bundle - R85", "la coincidencia por nombre encabeza los resultados")

	reply = handle(e, "2*baby*1")
	assert.True(t, strings.HasPrefix(reply, "CON ✅ Added to Cart!"))
	assert.Contains(t, reply, "Baby Care Bundle - R85")
}

func TestSearchNoMatches(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "2")
	reply := handle(e, "2*zzzz")
	assert.True(t, strings.HasPrefix(reply, "CON ❌ No matches for 'zzzz'"))
}

func TestSearchInvalidSelection(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "2")
	handle(e, "2*baby")
	assert.Equal(t, "CON ❌ Invalid selection\n\n0. Back", handle(e, "2*baby*9"))
}

func TestSearchBackReturnsToMainMenu(t *testing.T) {
	e, _ := newEngine(t)
	root := handle(e, "")
	handle(e, "2")
	assert.Equal(t, root, handle(e, "2*0"), "atrás desde la pantalla de búsqueda reproduce el menú raíz")
}

func TestBackFromSearchResultsReturnsToSearch(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "2")
	handle(e, "2*baby")
	reply := handle(e, "2*baby*0")
	assert.True(t, strings.HasPrefix(reply, "CON 🔍 Search Products"), "atrás desde un resultado vuelve a la pantalla de búsqueda")
}

// ── Carrito ──────────────────────────────────────────────────────────────────

func TestCartViewAndRemove(t *testing.T) {
	e, _ := newEngine(t)

	assert.Equal(t, "CON 🛒 Your cart is empty\n\n1. Start Shopping\n0. Back", handle(e, "3"))

	handle(e, "1*1")
	handle(e, "1*3")

	reply := handle(e, "3")
	assert.True(t, strings.HasPrefix(reply, "CON 🛒 Your Cart (2 items)"))
	assert.Contains(t, reply, "1. Essential Groceries - R45")
	assert.Contains(t, reply, "Total: R130")
	assert.Contains(t, reply, "2. Remove Item")

	reply = handle(e, "3*2")
	assert.True(t, strings.HasPrefix(reply, "CON 🗑 Remove Item"))

	reply = handle(e, "3*2*1")
	assert.Contains(t, reply, "Your Cart (1 items)")
	assert.Contains(t, reply, "Baby Care Bundle")
}

func TestRemovePromptWithEmptyCart(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, "CON 🛒 Your cart is empty\n\n1. Start Shopping\n0. Back", handle(e, "3*2"))
}

// ── Reintentos concurrentes del gateway ──────────────────────────────────────

func TestConcurrentRetriesSameSessionKeepCartConsistent(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "")

	const retries = 8
	var wg sync.WaitGroup
	wg.Add(retries)
	for i := 0; i < retries; i++ {
		go func() {
			defer wg.Done()
			handle(e, "1*1")
		}()
	}
	wg.Wait()

	cart := gw.LoadCart(testPhone)
	require.Len(t, cart, 1, "el mismo combo se acumula en una sola línea")
	assert.Equal(t, retries, cart[0].Quantity, "ningún agregado se pierde bajo requests concurrentes")
}

// ── Atrás y salida ───────────────────────────────────────────────────────────

func TestBackNeverReplaysSideEffects(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "1*1")

	// Atrás desde la confirmación: re-resuelve sin volver a agregar.
	reply := handle(e, "1*1*0")
	assert.True(t, strings.HasPrefix(reply, "CON 🦁 TabOrder"), "un camino con efectos vuelve al menú principal")
	require.Len(t, gw.LoadCart(testPhone), 1)
	assert.Equal(t, 1, gw.LoadCart(testPhone)[0].Quantity, "la vuelta atrás no repite el agregado")
}

func TestBackToQuickOrder(t *testing.T) {
	e, _ := newEngine(t)
	reply := handle(e, "1*0")
	assert.True(t, strings.HasPrefix(reply, "CON 🛒 Quick Order"))
}

func TestExit(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, "END 🦁 Thank you for using TabOrder!\nAfrica's #1 commerce platform", handle(e, "0"))
}

func TestInvalidOptionFallback(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, "CON Invalid option\n\n0. Main Menu", handle(e, "99"))
}

func TestFallbackNumericTokenAddsCombo(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "1*5") // página More Combos
	reply := handle(e, "1*5*6")
	assert.True(t, strings.HasPrefix(reply, "CON ✅ Added: Breakfast Special"))
	assert.Contains(t, reply, "Price: R40")
}

// ── Registros ────────────────────────────────────────────────────────────────

func TestCompleteRegistration(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "")

	reply := handle(e, "4")
	assert.True(t, strings.HasPrefix(reply, "CON 📝 Complete Your Registration"))

	reply = handle(e, "4*Thabo Mokoena")
	assert.True(t, strings.HasPrefix(reply, "END ✅ REGISTRATION COMPLETE!"))
	assert.Contains(t, reply, "Name: Thabo Mokoena")
	assert.Contains(t, reply, "+40 bonus points")

	user := gw.GetUser(testPhone)
	assert.Equal(t, entity.FullyRegistered, user.Registration)
	assert.Equal(t, 50, user.LoyaltyPoints, "bienvenida 10 + bono de registro 40")
	require.NotNil(t, user.AssignedPickupPoint)
	assert.NotEmpty(t, user.AssignedPickupPoint.ID)
}

func TestCompleteRegistrationNameTooShort(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "4")
	assert.Equal(t, "CON Name too short\nEnter your full name:\n\n0. Back", handle(e, "4*X"))
}

func TestLoyaltyStatusForRegisteredUser(t *testing.T) {
	e, gw := newEngine(t)
	handle(e, "")
	user := gw.GetUser(testPhone)
	user.Registration = entity.FullyRegistered
	gw.SaveUser(user)

	reply := handle(e, "4")
	assert.True(t, strings.HasPrefix(reply, "CON 👑 Loyalty Status"))
	assert.Contains(t, reply, "Tier: Bronze")
	assert.Contains(t, reply, "Next Tier: R500 more")
}

func TestCustomerRegistrationFlow(t *testing.T) {
	e, gw := newEngine(t)

	reply := handle(e, "8")
	assert.True(t, strings.HasPrefix(reply, "CON 👤 Customer Registration"))

	reply = handle(e, "8*Mary Jane")
	assert.Contains(t, reply, "Name: Mary Jane")
	assert.Contains(t, reply, "Enter your area/suburb:")

	reply = handle(e, "8*Mary Jane*Soweto")
	assert.True(t, strings.HasPrefix(reply, "END ✅ CUSTOMER REGISTERED!"))
	assert.Contains(t, reply, "Area: Soweto")
	assert.Contains(t, reply, "+50 loyalty points")

	user := gw.GetUser(testPhone)
	assert.Equal(t, entity.FullyRegistered, user.Registration)
	assert.Equal(t, "Soweto", user.CustomerArea)
	assert.Equal(t, 60, user.LoyaltyPoints)
}

func TestOption9OnlyWithCart(t *testing.T) {
	e, _ := newEngine(t)
	handle(e, "")
	assert.Equal(t, "CON ❌ Invalid option\n\n0. Back", handle(e, "9"))

	handle(e, "1*1")
	reply := handle(e, "9")
	assert.True(t, strings.HasPrefix(reply, "CON 👤 Customer Registration"))
}

func TestMobileSpazaSignup(t *testing.T) {
	e, gw := newEngine(t)

	reply := handle(e, "6")
	assert.True(t, strings.HasPrefix(reply, "CON 🦁 Become Mobile Spaza"))

	reply = handle(e, "6*Jane Dube")
	assert.True(t, strings.HasPrefix(reply, "CON 📊 Earnings Potential"))
	assert.Contains(t, reply, "Name: Jane Dube")

	reply = handle(e, "6*Jane Dube*1")
	assert.True(t, strings.HasPrefix(reply, "END ✅ MOBILE SPAZA REGISTERED!"))
	assert.Contains(t, reply, "Owner: Jane Dube")

	user := gw.GetUser(testPhone)
	assert.True(t, user.IsMobileSpaza)
	assert.Regexp(t, `^MS\d{4}$`, user.SpazaID)

	// Con el alta hecha, "6" pasa a ser el dashboard.
	reply = handle(e, "6")
	assert.True(t, strings.HasPrefix(reply, "CON 📊 Spaza Dashboard"))
	assert.Contains(t, reply, "Owner: Jane Dube")
}

func TestStationarySpazaSignup(t *testing.T) {
	e, _ := newEngine(t)

	reply := handle(e, "7")
	assert.True(t, strings.HasPrefix(reply, "CON 🏪 Register Pickup Point"))

	reply = handle(e, "7*Corner Shop")
	assert.True(t, strings.HasPrefix(reply, "END ✅ PICKUP POINT REGISTERED!"))
	assert.Contains(t, reply, "Shop: Corner Shop")
	assert.Regexp(t, `ID: PP\d{4}`, reply)
	assert.Contains(t, reply, "Location: South Africa")
}

// ── Reorden y última orden ───────────────────────────────────────────────────

func TestReorderLastOrder(t *testing.T) {
	e, _ := newEngine(t)

	assert.Equal(t, "CON ❌ No previous orders found\n\n1. Start Shopping\n0. Back", handle(e, "4*1"))

	handle(e, "1*5*5") // Student Survival Kit vía fallback
	handle(e, "1*5*5*1*1")

	reply := handle(e, "4*1")
	assert.True(t, strings.HasPrefix(reply, "CON ✅ Items Added to Cart"))
	assert.Contains(t, reply, "1 items from last order")
	assert.Contains(t, reply, "Total: R35")
}

func TestLastOrderSummary(t *testing.T) {
	e, _ := newEngine(t)

	assert.Equal(t, "CON 📦 No previous orders\n\n1. Start Shopping\n0. Back", handle(e, "5"))

	handle(e, "1*2")
	confirm := handle(e, "1*2*1*1")
	require.True(t, strings.HasPrefix(confirm, "END ✅ ORDER CONFIRMED!"))

	reply := handle(e, "5")
	assert.True(t, strings.HasPrefix(reply, "CON 🔄 Reorder Last Order"))
	assert.Contains(t, reply, "Total: R120")
}

// ── Geografía por prefijo ────────────────────────────────────────────────────

func TestCurrencyFollowsDialingPrefix(t *testing.T) {
	e, _ := newEngine(t)

	reply := e.Handle(context.Background(), "s2", "+254712345678", "")
	assert.Contains(t, reply, "TabOrder Kenya", "el prefijo +254 resuelve Kenia")

	reply = e.Handle(context.Background(), "s2", "+254712345678", "1*1")
	assert.Contains(t, reply, "KSh45", "los precios usan la moneda del país")
}
