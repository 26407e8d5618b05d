package ussd

import (
	"context"
	"sync"
	"time"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	"github.com/taborder/ussd-api/pkg/logger"
)

// SessionManager mapa de sesiones en memoria protegido por mutex, con
// snapshot durable por sesión y barrido periódico de expiradas.
//
// El canal USSD corta la sesión a los pocos minutos de inactividad; el TTL
// local replica ese corte para que el paso conversacional no sobreviva más
// que la sesión del operador.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
	locks    map[string]*sync.Mutex

	gw  *storage.Gateway
	ttl time.Duration
	log *logger.Logger
}

// NewSessionManager construye el manager con el TTL de inactividad dado.
func NewSessionManager(gw *storage.Gateway, ttl time.Duration, log *logger.Logger) *SessionManager {
	return &SessionManager{
		sessions: map[string]*entity.Session{},
		locks:    map[string]*sync.Mutex{},
		gw:       gw,
		ttl:      ttl,
		log:      log,
	}
}

// Restore repuebla el mapa desde los snapshots durables (warm restart).
// Los snapshots ya vencidos se descartan y se borran del almacenamiento.
func (m *SessionManager) Restore() {
	restored := m.gw.LoadSessions()

	m.mu.Lock()
	defer m.mu.Unlock()
	alive := 0
	for key, s := range restored {
		if s.Expired(m.ttl) {
			m.gw.DeleteSession(key)
			continue
		}
		m.sessions[key] = s
		alive++
	}
	m.log.Info().Int("sessions", alive).Msg("sesiones restauradas del snapshot")
}

// Acquire devuelve la sesión viva para (sessionID, phone), creándola con el
// carrito durable del teléfono si hace falta, con su candado por clave ya
// tomado. El gateway del operador reintenta requests: dos despachos
// concurrentes sobre la misma clave mutarían carrito y scratch sin orden, así
// que se serializan. El release devuelto libera el candado.
func (m *SessionManager) Acquire(sessionID, phone string) (*entity.Session, func()) {
	key := entity.SessionKey(sessionID, phone)
	l := m.lockFor(key)
	l.Lock()
	return m.getOrCreate(key, sessionID, phone), l.Unlock
}

// lockFor devuelve el mutex de la clave, creándolo si no existe.
func (m *SessionManager) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// getOrCreate se llama con el candado de la clave tomado.
func (m *SessionManager) getOrCreate(key, sessionID, phone string) *entity.Session {
	m.mu.Lock()
	if s, ok := m.sessions[key]; ok && !s.Expired(m.ttl) {
		m.mu.Unlock()
		return s
	}
	delete(m.sessions, key)
	m.mu.Unlock()

	// Fuera del lock del mapa: la carga del carrito puede tocar la base.
	cart := m.gw.LoadCart(phone)
	s := entity.NewSession(sessionID, phone, cart)

	m.mu.Lock()
	m.sessions[key] = s
	m.mu.Unlock()

	m.log.Info().Str("phone", phone).Int("cart_items", len(cart)).Msg("sesión creada")
	return s
}

// Flush persiste el snapshot de la sesión (se llama al final de cada request).
func (m *SessionManager) Flush(s *entity.Session) {
	m.gw.SaveSession(s)
}

// Count sesiones vivas en memoria (para /health).
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictExpired elimina del mapa y del snapshot las sesiones vencidas.
// Devuelve cuántas eliminó.
func (m *SessionManager) EvictExpired() int {
	m.mu.Lock()
	var expired []string
	for key, s := range m.sessions {
		if s.Expired(m.ttl) {
			delete(m.sessions, key)
			expired = append(expired, key)
		}
	}
	m.mu.Unlock()

	for _, key := range expired {
		m.gw.DeleteSession(key)
	}

	// Los candados de claves vencidas se liberan solo si nadie los sostiene.
	m.mu.Lock()
	for _, key := range expired {
		if l, ok := m.locks[key]; ok && l.TryLock() {
			delete(m.locks, key)
			l.Unlock()
		}
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		m.log.Info().Int("evicted", len(expired)).Msg("sesiones expiradas eliminadas")
	}
	return len(expired)
}

// StartEviction corre el barrido periódico hasta que el contexto se cancele.
func (m *SessionManager) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}
