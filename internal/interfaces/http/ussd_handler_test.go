package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taborder/ussd-api/internal/application/ordering"
	"github.com/taborder/ussd-api/internal/application/ussd"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/geo"
	"github.com/taborder/ussd-api/internal/infrastructure/catalog"
	"github.com/taborder/ussd-api/internal/infrastructure/filestore"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

type noopNotifier struct{}

func (noopNotifier) SendInvoice(context.Context, *entity.Order) error { return nil }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()
	log := logger.Nop()

	gw := storage.New(storage.Backends{
		Users:        filestore.NewUserRepository(dir),
		Orders:       filestore.NewOrderRepository(dir),
		Sessions:     filestore.NewSessionRepository(dir),
		CartFallback: filestore.NewCartRepository(dir),
	}, false, log)

	cat := catalog.New(nil, "", log)
	cart := ordering.NewCartUseCase(gw, cat, log)
	checkout := ordering.NewCheckoutUseCase(gw, cart, noopNotifier{}, log)
	sessions := ussd.NewSessionManager(gw, 5*time.Minute, log)
	engine := ussd.NewEngine(sessions, geo.NewResolver(geo.FixedLocator{}), cat, cart, checkout, gw, log)

	app := fiber.New()
	Router(app, RouterDeps{
		USSD:   NewUSSDHandler(engine, log),
		Health: NewHealthHandler("taborder-ussd", sessions, gw, cat),
	})
	return app
}

func postUSSD(t *testing.T, app *fiber.App, sessionID, phone, text string) (int, string) {
	t.Helper()
	form := url.Values{}
	form.Set("sessionId", sessionID)
	form.Set("phoneNumber", phone)
	form.Set("text", text)

	req := httptest.NewRequest("POST", "/ussd", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err, "la petición no debe fallar")
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ─────────────────────────── POST /ussd ───────────────────────────

func TestUSSDMainMenu(t *testing.T) {
	app := newTestApp(t)

	status, body := postUSSD(t, app, "ATU123", "+27821234567", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "CON 🦁 TabOrder South Africa"), "el menú principal abre la sesión")
	assert.Contains(t, body, "1. Quick Order")
}

func TestUSSDFullPurchaseFlow(t *testing.T) {
	app := newTestApp(t)
	const phone = "+254712345678"

	_, body := postUSSD(t, app, "ATU200", phone, "1")
	assert.True(t, strings.HasPrefix(body, "CON 🛒 Quick Order"))

	_, body = postUSSD(t, app, "ATU200", phone, "1*2")
	assert.Contains(t, body, "Added to Cart!")
	assert.Contains(t, body, "KSh120", "los precios llevan la moneda resuelta por prefijo")

	_, body = postUSSD(t, app, "ATU200", phone, "1*2*1")
	assert.True(t, strings.HasPrefix(body, "CON 💳 Checkout"))

	status, body := postUSSD(t, app, "ATU200", phone, "1*2*1*1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "END ✅ ORDER CONFIRMED!"), "el pago contraentrega confirma la orden")
	assert.Contains(t, body, "Payment: Cash on Delivery")
}

func TestUSSDTerminalExit(t *testing.T) {
	app := newTestApp(t)

	status, body := postUSSD(t, app, "ATU300", "+27821234567", "0")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "END 🦁 Thank you"))
}

func TestUSSDSessionsAreIndependent(t *testing.T) {
	app := newTestApp(t)

	postUSSD(t, app, "ATU400", "+27821234567", "1*1")
	_, body := postUSSD(t, app, "ATU401", "+27829999999", "3")
	assert.Contains(t, body, "Your cart is empty", "el carrito de un teléfono no se mezcla con otro")
}

// ─────────────────────────── GET /health ───────────────────────────

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	postUSSD(t, app, "ATU500", "+27821234567", "")

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "file", payload["storage_backend"])
	assert.EqualValues(t, 6, payload["combos"])
	assert.EqualValues(t, 1, payload["active_sessions"])
}
