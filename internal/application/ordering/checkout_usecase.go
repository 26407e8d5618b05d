package ordering

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taborder/ussd-api/internal/domain"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/loyalty"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

// Métodos de pago aceptados en el checkout.
const (
	PaymentCashOnDelivery = "Cash on Delivery"
	PaymentMobileMoney    = "Mobile Money"
	PaymentUSSD           = "USSD Payment"
)

// CheckoutUseCase confirmación de órdenes: numeración, puntos de lealtad,
// persistencia tolerante a fallos parciales y notificación de factura.
type CheckoutUseCase struct {
	gw       *storage.Gateway
	cart     *CartUseCase
	notifier InvoiceNotifier
	log      *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso de checkout.
func NewCheckoutUseCase(gw *storage.Gateway, cart *CartUseCase, notifier InvoiceNotifier, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{gw: gw, cart: cart, notifier: notifier, log: log}
}

// Checkout confirma la orden con el método de pago dado.
//
// Los puntos se calculan con el multiplicador del tier VIGENTE; el tier se
// recalcula después, sobre el gasto acumulado nuevo. Si la persistencia de
// la orden falla, la actualización del usuario procede igual (fallo parcial
// tolerado).
func (uc *CheckoutUseCase) Checkout(ctx context.Context, session *entity.Session, geoCtx entity.GeoContext, user *entity.User, paymentMethod string) (*entity.Order, error) {
	if len(session.Cart) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := session.CartTotal()
	points := loyalty.PointsEarned(subtotal, user.LoyaltyTier)
	now := time.Now().UTC()

	order := &entity.Order{
		OrderNumber:         NewOrderNumber(),
		Phone:               session.Phone,
		Items:               append([]entity.CartItem(nil), session.Cart...),
		Subtotal:            subtotal,
		Total:               subtotal,
		Currency:            geoCtx.Currency,
		PaymentMethod:       paymentMethod,
		Status:              "confirmed",
		Country:             geoCtx.Country,
		LoyaltyPointsEarned: points,
		CreatedAt:           now,
	}
	uc.gw.AppendOrder(order)

	user.TotalSpent = user.TotalSpent.Add(subtotal)
	user.LoyaltyPoints += points
	user.LoyaltyTier = loyalty.TierFor(user.TotalSpent)
	user.TotalOrders++
	user.LastOrderDate = &now
	uc.gw.SaveUser(user)

	if err := uc.notifier.SendInvoice(ctx, order); err != nil {
		uc.log.Warn().Err(err).Str("order", order.OrderNumber).Msg("envío de factura falló")
	}

	uc.cart.Clear(session)

	uc.log.Info().
		Str("order", order.OrderNumber).
		Str("phone", session.Phone).
		Str("total", order.Total.String()).
		Str("payment", paymentMethod).
		Int("points", points).
		Msg("orden confirmada")
	return order, nil
}

// Reorder reemplaza el carrito con las líneas de la última orden.
func (uc *CheckoutUseCase) Reorder(session *entity.Session) (*entity.Order, error) {
	orders := uc.gw.OrdersByPhone(session.Phone)
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	last := orders[0]
	uc.cart.Replace(session, last.Items)
	return last, nil
}

// LastOrder última orden del suscriptor (nil si no tiene historial).
func (uc *CheckoutUseCase) LastOrder(phone string) *entity.Order {
	orders := uc.gw.OrdersByPhone(phone)
	if len(orders) == 0 {
		return nil
	}
	return orders[0]
}

// NewOrderNumber genera un número de orden corto "TO" + 8 hex de un UUID.
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TO" + strings.ToUpper(hex[:8])
}
