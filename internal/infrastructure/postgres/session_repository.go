package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo snapshot de sesiones en PostgreSQL para recuperación tras
// reinicio. Cada sesión se escribe completa como JSONB bajo su clave compuesta.
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador.
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// Save escribe el snapshot de una sesión (upsert por clave compuesta).
func (r *SessionRepo) Save(session *entity.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	query := `
		INSERT INTO ussd_sessions (session_key, data, last_activity)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO UPDATE SET data = EXCLUDED.data, last_activity = EXCLUDED.last_activity`
	_, err = r.q.Exec(context.Background(), query, session.Key(), raw, session.LastActivity)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete elimina el snapshot de una sesión (expiración).
func (r *SessionRepo) Delete(key string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM ussd_sessions WHERE session_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadAll carga todas las sesiones persistidas (solo en el arranque).
func (r *SessionRepo) LoadAll() (map[string]*entity.Session, error) {
	rows, err := r.q.Query(context.Background(), `SELECT session_key, data FROM ussd_sessions`)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	out := map[string]*entity.Session{}
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var s entity.Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		out[key] = &s
	}
	return out, rows.Err()
}
