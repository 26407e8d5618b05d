package repository

import "github.com/taborder/ussd-api/internal/domain/entity"

// UserRepository puerto de persistencia para suscriptores (clave: teléfono).
type UserRepository interface {
	Get(phone string) (*entity.User, error)
	Save(user *entity.User) error
	Exists(phone string) (bool, error)
}
