package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Step estado de la máquina conversacional. El gateway del operador no
// conserva estado: el paso actual desambigua los sufijos del texto acumulado.
type Step string

const (
	StepStart           Step = "start"
	StepSearch          Step = "search"
	StepMobileSpaza     Step = "mobile_spaza"
	StepStationarySpaza Step = "stationary_spaza"
	StepCustomerReg     Step = "customer_registration"
	StepCompleteReg     Step = "complete_registration"
)

// Session sesión conversacional USSD, identificada por (sessionId del canal,
// teléfono). El carrito es una copia en caché del carrito durable: se
// reconcilia al crear la sesión y tras cada mutación.
type Session struct {
	SessionID    string         `json:"session_id"`
	Phone        string         `json:"phone"`
	CurrentStep  Step           `json:"current_step"`
	Scratch      map[string]any `json:"scratch"`
	Cart         []CartItem     `json:"cart"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}

// NewSession crea una sesión en el paso inicial con el carrito dado
// (cargado del almacenamiento durable).
func NewSession(sessionID, phone string, cart []CartItem) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID:    sessionID,
		Phone:        phone,
		CurrentStep:  StepStart,
		Scratch:      map[string]any{},
		Cart:         cart,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// SessionKey clave compuesta con la que el mapa de sesiones indexa.
func SessionKey(sessionID, phone string) string {
	return sessionID + "_" + phone
}

// Key clave compuesta de esta sesión.
func (s *Session) Key() string {
	return SessionKey(s.SessionID, s.Phone)
}

// Touch actualiza la marca de última actividad.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}

// SetStep cambia el paso actual de la conversación.
func (s *Session) SetStep(step Step) {
	s.CurrentStep = step
	s.Touch()
}

// Put guarda un valor transitorio de la conversación.
func (s *Session) Put(key string, value any) {
	if s.Scratch == nil {
		s.Scratch = map[string]any{}
	}
	s.Scratch[key] = value
	s.Touch()
}

// GetString lee un valor transitorio como string ("" si no existe).
func (s *Session) GetString(key string) string {
	if v, ok := s.Scratch[key].(string); ok {
		return v
	}
	return ""
}

// GetInts lee un slice de IDs del scratch. Tolera la forma []any que
// produce el round-trip JSON del snapshot de sesiones (warm restart).
func (s *Session) GetInts(key string) []int {
	switch v := s.Scratch[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				out = append(out, int(f))
			}
		}
		return out
	}
	return nil
}

// CartTotal total actual del carrito en sesión.
func (s *Session) CartTotal() decimal.Decimal {
	return CartTotal(s.Cart)
}

// Expired true si la sesión superó el máximo de inactividad.
func (s *Session) Expired(ttl time.Duration) bool {
	return time.Since(s.LastActivity) > ttl
}
