package filestore

import (
	"path/filepath"
	"sync"

	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en un único JSON: mapa teléfono -> User.
type UserRepo struct {
	mu   sync.Mutex
	path string
}

// NewUserRepository construye el repo de archivos en el directorio dado.
func NewUserRepository(dir string) *UserRepo {
	return &UserRepo{path: filepath.Join(dir, usersFile)}
}

// Get obtiene un usuario por teléfono (nil, nil si no existe).
func (r *UserRepo) Get(phone string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := map[string]*entity.User{}
	if err := readJSON(r.path, &users); err != nil {
		return nil, err
	}
	return users[phone], nil
}

// Save inserta o reemplaza el usuario (lectura-modificación-escritura bajo lock).
func (r *UserRepo) Save(user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := map[string]*entity.User{}
	if err := readJSON(r.path, &users); err != nil {
		return err
	}
	users[user.Phone] = user
	return writeJSON(r.path, users)
}

// Exists verifica si el teléfono ya está registrado.
func (r *UserRepo) Exists(phone string) (bool, error) {
	u, err := r.Get(phone)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}
