// Package storage implementa el gateway de persistencia: una superficie CRUD
// uniforme sobre usuarios, órdenes, carritos y sesiones que absorbe los
// fallos de almacenamiento en su frontera. Hacia la máquina de estados nunca
// se propaga un error crudo de backend.
package storage

import (
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
	"github.com/taborder/ussd-api/pkg/logger"
)

// Backends repos concretos por agregado. Users/Orders/Sessions quedan fijos
// al backend elegido en el arranque. El carrito es la excepción deliberada:
// intenta CartPrimary en cada llamada y degrada a CartFallback por llamada
// (asimetría intencional, heredada y documentada: el carrito debe sobrevivir
// a reinicios de sesión incluso con la base durable intermitente).
type Backends struct {
	Users        repository.UserRepository
	Orders       repository.OrderRepository
	Sessions     repository.SessionRepository
	CartPrimary  repository.CartRepository // nil en modo solo-archivos
	CartFallback repository.CartRepository
}

// Gateway superficie CRUD uniforme con política de degradación.
type Gateway struct {
	b       Backends
	durable bool
	log     *logger.Logger
}

// New construye el gateway. durable indica si el backend elegido en el
// arranque es PostgreSQL (false = archivos).
func New(b Backends, durable bool, log *logger.Logger) *Gateway {
	return &Gateway{b: b, durable: durable, log: log}
}

// Durable true si el backend de arranque es PostgreSQL.
func (g *Gateway) Durable() bool { return g.durable }

// Mode nombre del backend activo (para /health).
func (g *Gateway) Mode() string {
	if g.durable {
		return "postgres"
	}
	return "file"
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// GetUser devuelve el usuario o nil (no existe o fallo de lectura, logueado).
func (g *Gateway) GetUser(phone string) *entity.User {
	u, err := g.b.Users.Get(phone)
	if err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("lectura de usuario falló")
		return nil
	}
	return u
}

// SaveUser persiste el usuario; el fallo se loguea y no interrumpe el request.
func (g *Gateway) SaveUser(user *entity.User) {
	if err := g.b.Users.Save(user); err != nil {
		g.log.Error().Err(err).Str("phone", user.Phone).Msg("escritura de usuario falló")
	}
}

// UserExists true si el teléfono ya fue visto (false ante fallo, logueado).
func (g *Gateway) UserExists(phone string) bool {
	exists, err := g.b.Users.Exists(phone)
	if err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("consulta de existencia falló")
		return false
	}
	return exists
}

// ── Órdenes ───────────────────────────────────────────────────────────────────

// AppendOrder persiste la orden. El fallo se loguea y NO revierte la
// actualización del usuario ya decidida: fallo parcial tolerado.
func (g *Gateway) AppendOrder(order *entity.Order) {
	if err := g.b.Orders.Append(order); err != nil {
		g.log.Error().Err(err).
			Str("order", order.OrderNumber).
			Str("phone", order.Phone).
			Msg("persistencia de orden falló; se continúa con la actualización del usuario")
	}
}

// OrdersByPhone órdenes del teléfono, la más reciente primero (vacío ante fallo).
func (g *Gateway) OrdersByPhone(phone string) []*entity.Order {
	orders, err := g.b.Orders.ListByPhone(phone)
	if err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("lectura de órdenes falló")
		return nil
	}
	return orders
}

// ── Carritos (fallback por llamada) ──────────────────────────────────────────

// LoadCart intenta el backend durable y degrada al de archivos en el mismo request.
func (g *Gateway) LoadCart(phone string) []entity.CartItem {
	if g.b.CartPrimary != nil {
		items, err := g.b.CartPrimary.Load(phone)
		if err == nil {
			return items
		}
		g.log.Warn().Err(err).Str("phone", phone).Msg("carrito durable ilegible; usando archivos")
	}
	items, err := g.b.CartFallback.Load(phone)
	if err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("carrito de respaldo ilegible")
		return nil
	}
	return items
}

// SaveCart escribe el carrito con la misma política de degradación por llamada.
func (g *Gateway) SaveCart(phone string, items []entity.CartItem) {
	if g.b.CartPrimary != nil {
		if err := g.b.CartPrimary.Save(phone, items); err == nil {
			return
		} else {
			g.log.Warn().Err(err).Str("phone", phone).Msg("escritura de carrito durable falló; usando archivos")
		}
	}
	if err := g.b.CartFallback.Save(phone, items); err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("escritura de carrito de respaldo falló")
	}
}

// ClearCart vacía el carrito en ambos backends alcanzables.
func (g *Gateway) ClearCart(phone string) {
	if g.b.CartPrimary != nil {
		if err := g.b.CartPrimary.Clear(phone); err != nil {
			g.log.Warn().Err(err).Str("phone", phone).Msg("limpieza de carrito durable falló")
		}
	}
	if err := g.b.CartFallback.Clear(phone); err != nil {
		g.log.Error().Err(err).Str("phone", phone).Msg("limpieza de carrito de respaldo falló")
	}
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

// SaveSession escribe el snapshot de la sesión (una por request, no el mapa completo).
func (g *Gateway) SaveSession(session *entity.Session) {
	if err := g.b.Sessions.Save(session); err != nil {
		g.log.Error().Err(err).Str("key", session.Key()).Msg("snapshot de sesión falló")
	}
}

// DeleteSession borra el snapshot (expiración).
func (g *Gateway) DeleteSession(key string) {
	if err := g.b.Sessions.Delete(key); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("borrado de snapshot de sesión falló")
	}
}

// LoadSessions recupera las sesiones persistidas para el warm restart.
func (g *Gateway) LoadSessions() map[string]*entity.Session {
	sessions, err := g.b.Sessions.LoadAll()
	if err != nil {
		g.log.Error().Err(err).Msg("recuperación de sesiones falló; se arranca en frío")
		return map[string]*entity.Session{}
	}
	return sessions
}
