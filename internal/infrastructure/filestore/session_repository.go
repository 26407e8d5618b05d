package filestore

import (
	"path/filepath"
	"sync"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo snapshot de sesiones en un único JSON: mapa clave compuesta -> sesión.
type SessionRepo struct {
	mu   sync.Mutex
	path string
}

// NewSessionRepository construye el repo de archivos en el directorio dado.
func NewSessionRepository(dir string) *SessionRepo {
	return &SessionRepo{path: filepath.Join(dir, sessionsFile)}
}

// Save escribe el snapshot de una sesión.
func (r *SessionRepo) Save(session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := map[string]*entity.Session{}
	if err := readJSON(r.path, &sessions); err != nil {
		return err
	}
	sessions[session.Key()] = session
	return writeJSON(r.path, sessions)
}

// Delete elimina el snapshot de una sesión (expiración).
func (r *SessionRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := map[string]*entity.Session{}
	if err := readJSON(r.path, &sessions); err != nil {
		return err
	}
	delete(sessions, key)
	return writeJSON(r.path, sessions)
}

// LoadAll carga todas las sesiones persistidas (solo en el arranque).
func (r *SessionRepo) LoadAll() (map[string]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := map[string]*entity.Session{}
	if err := readJSON(r.path, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
