package repository

import "github.com/taborder/ussd-api/internal/domain/entity"

// SessionRepository puerto de persistencia de sesiones. Solo se usa para
// recuperación tras reinicio (LoadAll al arrancar); durante la ejecución las
// sesiones viven en memoria y se escriben una a una tras cada request.
type SessionRepository interface {
	Save(session *entity.Session) error
	Delete(key string) error
	LoadAll() (map[string]*entity.Session, error)
}
