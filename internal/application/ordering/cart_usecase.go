package ordering

import (
	"fmt"

	"github.com/taborder/ussd-api/internal/domain"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

// CartUseCase mutaciones del carrito. Cada mutación actualiza la copia en
// sesión y la replica al carrito durable en la misma llamada, así el carrito
// sobrevive a la expiración de la sesión.
type CartUseCase struct {
	gw      *storage.Gateway
	catalog ComboCatalog
	log     *logger.Logger
}

// NewCartUseCase construye el caso de uso del carrito.
func NewCartUseCase(gw *storage.Gateway, catalog ComboCatalog, log *logger.Logger) *CartUseCase {
	return &CartUseCase{gw: gw, catalog: catalog, log: log}
}

// AddCombo agrega el combo al carrito de la sesión. Si el combo ya tiene una
// línea, incrementa la cantidad en lugar de duplicarla.
func (uc *CartUseCase) AddCombo(session *entity.Session, comboID int) (entity.CartItem, error) {
	combo, ok := uc.catalog.ByID(comboID)
	if !ok {
		return entity.CartItem{}, fmt.Errorf("combo %d: %w", comboID, domain.ErrComboNotFound)
	}

	for i := range session.Cart {
		if session.Cart[i].ComboID == comboID {
			session.Cart[i].Quantity++
			session.Touch()
			uc.gw.SaveCart(session.Phone, session.Cart)
			return session.Cart[i], nil
		}
	}

	line := combo.ToCartItem()
	session.Cart = append(session.Cart, line)
	session.Touch()
	uc.gw.SaveCart(session.Phone, session.Cart)

	uc.log.Info().
		Str("phone", session.Phone).
		Int("combo", comboID).
		Int("items", len(session.Cart)).
		Msg("combo agregado al carrito")
	return line, nil
}

// RemoveAt quita la línea en la posición dada (base 1, el orden del listado
// que ve el suscriptor).
func (uc *CartUseCase) RemoveAt(session *entity.Session, position int) (entity.CartItem, error) {
	idx := position - 1
	if idx < 0 || idx >= len(session.Cart) {
		return entity.CartItem{}, fmt.Errorf("posición %d: %w", position, domain.ErrInvalidInput)
	}
	removed := session.Cart[idx]
	session.Cart = append(session.Cart[:idx], session.Cart[idx+1:]...)
	session.Touch()
	uc.gw.SaveCart(session.Phone, session.Cart)
	return removed, nil
}

// Clear vacía el carrito en sesión y en el almacenamiento durable.
func (uc *CartUseCase) Clear(session *entity.Session) {
	session.Cart = nil
	session.Touch()
	uc.gw.ClearCart(session.Phone)
}

// Replace reemplaza el carrito completo (reorden de la última compra).
func (uc *CartUseCase) Replace(session *entity.Session, items []entity.CartItem) {
	session.Cart = append([]entity.CartItem(nil), items...)
	session.Touch()
	uc.gw.SaveCart(session.Phone, session.Cart)
}
