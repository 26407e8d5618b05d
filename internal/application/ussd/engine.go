// Package ussd implementa la máquina conversacional. El gateway del
// operador no guarda estado: reenvía en cada request el camino acumulado
// separado por "*", y el paso guardado en sesión desambigua los sufijos
// compartidos (búsqueda, altas, pagos).
package ussd

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taborder/ussd-api/internal/application/ordering"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/geo"
	"github.com/taborder/ussd-api/internal/domain/loyalty"
	"github.com/taborder/ussd-api/internal/domain/search"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

const scratchSearchResults = "search_results"
const scratchSpazaName = "spaza_name"
const scratchCustomerName = "customer_name"

// Engine despacha cada request USSD contra el estado de la sesión.
type Engine struct {
	sessions *SessionManager
	geo      *geo.Resolver
	catalog  ordering.ComboCatalog
	cart     *ordering.CartUseCase
	checkout *ordering.CheckoutUseCase
	gw       *storage.Gateway
	log      *logger.Logger
}

// NewEngine construye el engine con todas sus dependencias.
func NewEngine(sessions *SessionManager, geoRes *geo.Resolver, catalog ordering.ComboCatalog, cart *ordering.CartUseCase, checkout *ordering.CheckoutUseCase, gw *storage.Gateway, log *logger.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		geo:      geoRes,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		gw:       gw,
		log:      log,
	}
}

// Handle atiende un request del gateway y devuelve el cuerpo plano
// ("CON ..." continúa la sesión, "END ..." la cierra).
func (e *Engine) Handle(ctx context.Context, sessionID, phone, text string) string {
	// El candado por clave serializa reintentos del gateway sobre la misma
	// sesión; el snapshot se persiste antes de soltarlo.
	s, release := e.sessions.Acquire(sessionID, phone)
	defer release()
	defer e.sessions.Flush(s)

	geoCtx := e.geo.Resolve(phone)
	user := e.ensureUser(phone, geoCtx)
	s.Touch()

	reply := e.dispatch(ctx, s, geoCtx, user, text)

	e.log.Info().
		Str("phone", phone).
		Str("text", text).
		Str("step", string(s.CurrentStep)).
		Bool("terminal", strings.HasPrefix(reply, "END")).
		Msg("request USSD atendido")
	return reply
}

// ensureUser devuelve el usuario del teléfono, dándolo de alta automática
// (CTT) con el bono de bienvenida si nunca fue visto.
func (e *Engine) ensureUser(phone string, geoCtx entity.GeoContext) *entity.User {
	if u := e.gw.GetUser(phone); u != nil {
		return u
	}
	u := &entity.User{
		Phone:         phone,
		Country:       geoCtx.Country,
		Currency:      geoCtx.Currency,
		VendorID:      geoCtx.VendorID,
		Lat:           geoCtx.UserLat,
		Lon:           geoCtx.UserLon,
		Registration:  entity.AutoRegistered,
		LoyaltyPoints: loyalty.WelcomeBonus,
		LoyaltyTier:   loyalty.Bronze,
		TotalSpent:    decimal.Zero,
		RegisteredAt:  time.Now().UTC(),
	}
	e.gw.SaveUser(u)
	e.log.Info().Str("phone", phone).Str("country", geoCtx.Country).Msg("alta automática de usuario")
	return u
}

// inSignupStep true si la sesión está dentro de un flujo de alta; esos
// pasos capturan el texto libre y excluyen los patrones de pago.
func inSignupStep(step entity.Step) bool {
	switch step {
	case entity.StepMobileSpaza, entity.StepStationarySpaza, entity.StepCustomerReg, entity.StepCompleteReg:
		return true
	}
	return false
}

// dispatch resuelve el camino acumulado. El orden de los casos importa:
// los sufijos compartidos ("*1", "*0") se evalúan después de los caminos
// literales que los contienen ("4*1", "3*2*{n}").
func (e *Engine) dispatch(ctx context.Context, s *entity.Session, geoCtx entity.GeoContext, user *entity.User, text string) string {
	currency := geoCtx.Currency
	notSignup := !inSignupStep(s.CurrentStep)
	parts := strings.Split(text, "*")

	switch {
	case text == "":
		return renderMainMenu(geoCtx, user, len(s.Cart))

	case text == "1":
		return renderQuickOrder(e.catalog.Combos(), currency)

	case text == "0":
		return exitResponse

	// Atrás: recorta "*0" y re-resuelve solo por nodos de render puro, así
	// la vuelta atrás nunca repite efectos (agregados al carrito, altas).
	// Va antes que cualquier captura de texto o selección.
	case strings.HasSuffix(text, "*0"):
		return e.dispatchBack(s, geoCtx, user, strings.TrimSuffix(text, "*0"))

	// Alta directa al carrito desde Quick Order ("5" abre la segunda página).
	case strings.HasPrefix(text, "1*") && len(parts) == 2:
		if parts[1] == "5" {
			return renderMoreCombos(e.catalog.Combos(), currency)
		}
		if id, err := strconv.Atoi(parts[1]); err == nil {
			if line, err := e.cart.AddCombo(s, id); err == nil {
				return renderAddedToCart(line, s.CartTotal(), currency)
			}
		}
		return invalidOption

	// Reorden: va antes que los patrones amplios de pago ("*1").
	case text == "4*1":
		if _, err := e.checkout.Reorder(s); err != nil {
			return "CON ❌ No previous orders found\n\n1. Start Shopping\n0. Back"
		}
		return renderReordered(len(s.Cart), s.CartTotal(), currency)

	// Quitar línea del carrito: también antes que los patrones de pago.
	case strings.HasPrefix(text, "3*2*"):
		pos, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return "CON ❌ Invalid selection\n\n0. Back"
		}
		if _, err := e.cart.RemoveAt(s, pos); err != nil {
			return "CON ❌ Invalid selection\n\n0. Back"
		}
		return renderCartView(s.Cart, currency)

	case text == "3*2":
		return renderRemovePrompt(s.Cart)

	// Cierre del alta de spaza móvil (el "1" confirma desde la proyección).
	case strings.HasSuffix(text, "*1") && s.CurrentStep == entity.StepMobileSpaza:
		name := s.GetString(scratchSpazaName)
		spazaID := fmt.Sprintf("MS%04d", 1000+rand.Intn(9000))
		user.IsMobileSpaza = true
		user.SpazaID = spazaID
		user.OwnerName = name
		e.gw.SaveUser(user)
		return fmt.Sprintf(`END ✅ MOBILE SPAZA REGISTERED!
ID: %s
Owner: %s

R6750/month target activated
SMS welcome package sent!

Start earning immediately!`, spazaID, name)

	// ── Pagos ────────────────────────────────────────────────────────────
	case strings.HasSuffix(text, "*1*1") && notSignup:
		return e.doCheckout(ctx, s, geoCtx, user, ordering.PaymentCashOnDelivery)

	case strings.HasSuffix(text, "*1*2") && !strings.HasSuffix(text, "*1*2*1") && notSignup:
		return renderMobileMoneyConfirm(s.CartTotal(), currency)

	case strings.HasSuffix(text, "*1*2*1") && notSignup:
		return e.doCheckout(ctx, s, geoCtx, user, ordering.PaymentMobileMoney)

	case strings.HasSuffix(text, "*1*3") && notSignup:
		return e.doCheckout(ctx, s, geoCtx, user, ordering.PaymentUSSD)

	// Menú de checkout desde cualquier pantalla con "1. Checkout".
	case strings.HasSuffix(text, "*1") && notSignup && s.CurrentStep != entity.StepSearch:
		if len(s.Cart) == 0 {
			return "END ❌ Your cart is empty!"
		}
		return renderCheckoutMenu(s.CartTotal(), currency)

	// ── Búsqueda ─────────────────────────────────────────────────────────
	case text == "2":
		s.SetStep(entity.StepSearch)
		return searchPrompt

	case s.CurrentStep == entity.StepSearch && strings.HasPrefix(text, "2*"):
		return e.dispatchSearch(s, parts, currency)

	case text == "3":
		return renderCartView(s.Cart, currency)

	// "4": completar registro para usuarios de alta automática, estado de
	// lealtad para los ya registrados.
	case text == "4":
		if !user.IsFullyRegistered() {
			s.SetStep(entity.StepCompleteReg)
			return completeRegPrompt
		}
		return renderLoyaltyStatus(user)

	case text == "5":
		last := e.checkout.LastOrder(s.Phone)
		if last == nil {
			return "CON 📦 No previous orders\n\n1. Start Shopping\n0. Back"
		}
		return renderLastOrder(last)

	case text == "6":
		if user.IsMobileSpaza {
			return renderSpazaDashboard(user, currency)
		}
		s.SetStep(entity.StepMobileSpaza)
		return mobileSpazaPrompt

	case text == "7":
		s.SetStep(entity.StepStationarySpaza)
		return stationarySpazaPrompt

	case text == "8":
		s.SetStep(entity.StepCustomerReg)
		return customerRegPrompt

	case text == "9":
		if len(s.Cart) > 0 {
			s.SetStep(entity.StepCustomerReg)
			return customerRegPrompt
		}
		return "CON ❌ Invalid option\n\n0. Back"

	// Proyección de ganancias del alta de spaza móvil.
	case s.CurrentStep == entity.StepMobileSpaza && (strings.HasPrefix(text, "6*") || strings.HasPrefix(text, "7*")):
		name := afterFirstStar(text)
		if len(name) < 2 {
			return "CON Name too short\nEnter your full name:\n\n0. Back"
		}
		customers := 8 + rand.Intn(8)
		daily := float64(customers) * (25 + rand.Float64()*10)
		s.Put(scratchSpazaName, name)
		return renderEarningsPotential(name, customers, daily, daily*30)

	// ── Cierres de los flujos de alta ────────────────────────────────────
	case s.CurrentStep == entity.StepCompleteReg && strings.HasPrefix(text, "4*"):
		name := afterFirstStar(text)
		if len(name) < 2 {
			return "CON Name too short\nEnter your full name:\n\n0. Back"
		}
		pickup := geo.NearestPickupPoint(geoCtx)
		user.Registration = entity.FullyRegistered
		user.CustomerName = name
		user.AssignedPickupPoint = &pickup
		user.LoyaltyPoints += loyalty.CompleteRegBonus
		e.gw.SaveUser(user)
		return fmt.Sprintf(`END ✅ REGISTRATION COMPLETE!
Name: %s
📍 Pickup Point: %s
Distance: %skm

👑 +%d bonus points awarded!
SMS with pickup details sent!`, name, pickup.Name, km(pickup.DistanceKm), loyalty.CompleteRegBonus)

	case s.CurrentStep == entity.StepStationarySpaza && strings.HasPrefix(text, "7*"):
		shop := afterFirstStar(text)
		if len(shop) < 2 {
			return "CON Shop name too short\nEnter your shop name:\n\n0. Back"
		}
		pickupID := fmt.Sprintf("PP%04d", 1000+rand.Intn(9000))
		return fmt.Sprintf(`END ✅ PICKUP POINT REGISTERED!
ID: %s
Shop: %s
Location: %s

You'll earn commission on deliveries
SMS activation guide sent!`, pickupID, shop, geoCtx.Country)

	case s.CurrentStep == entity.StepCustomerReg && strings.HasPrefix(text, "8*"):
		return e.dispatchCustomerReg(s, geoCtx, user, parts)

	default:
		return e.dispatchFallback(s, text, currency)
	}
}

func (e *Engine) doCheckout(ctx context.Context, s *entity.Session, geoCtx entity.GeoContext, user *entity.User, method string) string {
	order, err := e.checkout.Checkout(ctx, s, geoCtx, user, method)
	if err != nil {
		return "END ❌ Cart is empty!"
	}
	return renderOrderConfirmed(order, user.LoyaltyTier)
}

// dispatchSearch maneja "2*{consulta}" y "2*{consulta}*{selección}".
func (e *Engine) dispatchSearch(s *entity.Session, parts []string, currency string) string {
	switch len(parts) {
	case 2:
		query := parts[1]
		if err := search.Validate(query); err != nil {
			return "CON 🔍 Search too short\nEnter at least 2 characters\n\n0. Back"
		}
		matches := search.Combos(query, e.catalog.Combos())
		if len(matches) == 0 {
			return fmt.Sprintf("CON ❌ No matches for '%s'\n\nTry: baby, family, student\n\n0. Back", query)
		}
		ids := make([]int, len(matches))
		for i, c := range matches {
			ids[i] = c.ID
		}
		s.Put(scratchSearchResults, ids)
		return renderSearchResults(matches, currency)

	case 3:
		sel, err := strconv.Atoi(parts[2])
		ids := s.GetInts(scratchSearchResults)
		if err != nil || sel < 1 || sel > len(ids) {
			return "CON ❌ Invalid selection\n\n0. Back"
		}
		line, err := e.cart.AddCombo(s, ids[sel-1])
		if err != nil {
			return "CON ❌ Invalid selection\n\n0. Back"
		}
		s.SetStep(entity.StepStart)
		return renderAddedToCart(line, s.CartTotal(), currency)

	default:
		return invalidOption
	}
}

// dispatchBack re-renderiza el padre del nodo recortado. Solo los nodos de
// render puro se resuelven de nuevo; cualquier otro camino vuelve al menú
// principal. "2*0" reproduce exactamente el cuerpo del request raíz; desde
// un resultado de búsqueda ("2*{q}*0") se vuelve a la pantalla de búsqueda.
func (e *Engine) dispatchBack(s *entity.Session, geoCtx entity.GeoContext, user *entity.User, parent string) string {
	s.SetStep(entity.StepStart)
	switch {
	case parent == "1":
		return renderQuickOrder(e.catalog.Combos(), geoCtx.Currency)
	case strings.HasPrefix(parent, "2*"):
		s.SetStep(entity.StepSearch)
		return searchPromptBack
	case parent == "3" && len(s.Cart) > 0:
		return renderCartView(s.Cart, geoCtx.Currency)
	default:
		return renderMainMenu(geoCtx, user, len(s.Cart))
	}
}

// dispatchCustomerReg alta de cliente en dos pasos: nombre y zona.
func (e *Engine) dispatchCustomerReg(s *entity.Session, geoCtx entity.GeoContext, user *entity.User, parts []string) string {
	switch len(parts) {
	case 2:
		name := parts[1]
		if len(name) < 2 {
			return "CON Name too short\nEnter your full name:\n\n0. Back"
		}
		s.Put(scratchCustomerName, name)
		return renderCustomerAreaPrompt(name)

	case 3:
		name, area := parts[1], parts[2]
		if len(area) < 2 {
			return "CON Area too short\nEnter your area:\n\n0. Back"
		}
		pickup := geo.NearestPickupPoint(geoCtx)
		user.Registration = entity.FullyRegistered
		user.CustomerName = name
		user.CustomerArea = area
		user.AssignedPickupPoint = &pickup
		user.LoyaltyPoints += loyalty.FullRegistrationBonus
		e.gw.SaveUser(user)
		return fmt.Sprintf(`END ✅ CUSTOMER REGISTERED!
Name: %s
Area: %s

📍 Assigned Pickup Point:
%s (%skm)

👑 +%d loyalty points earned!
SMS with details sent!`, name, area, pickup.Name, km(pickup.DistanceKm), loyalty.FullRegistrationBonus)

	default:
		return invalidOption
	}
}

// dispatchFallback: el último token numérico se interpreta como combo a
// agregar; cualquier otra cosa re-pregunta.
func (e *Engine) dispatchFallback(s *entity.Session, text, currency string) string {
	if strings.Contains(text, "*") {
		parts := strings.Split(text, "*")
		if id, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if line, err := e.cart.AddCombo(s, id); err == nil {
				return fmt.Sprintf("CON ✅ Added: %s\nPrice: %s%s\n\n1. Checkout\n2. Continue Shopping\n0. Back",
					line.Name, currency, money(line.UnitPrice))
			}
		}
	}
	return invalidOption
}

func afterFirstStar(text string) string {
	if _, rest, ok := strings.Cut(text, "*"); ok {
		return rest
	}
	return ""
}
