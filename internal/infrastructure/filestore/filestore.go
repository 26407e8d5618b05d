// Package filestore implementa el backend de respaldo en archivos: un JSON
// por agregado (usuarios, órdenes, carritos, sesiones) bajo el directorio
// persistente. Es el plan B cuando PostgreSQL no está disponible y el
// fallback por llamada de los carritos.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taborder/ussd-api/internal/domain"
)

// Nombres de archivo por agregado (mapa serializado completo por archivo).
const (
	usersFile    = "taborder_users.json"
	ordersFile   = "taborder_orders.json"
	cartsFile    = "taborder_carts.json"
	sessionsFile = "taborder_sessions.json"
)

// readJSON carga el archivo en v. Archivo inexistente no es error: deja v en
// cero. Cualquier otra falla se marca con domain.ErrStorage.
func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: leer %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decodificar %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	return nil
}

// writeJSON serializa v y lo escribe de forma atómica (archivo temporal + rename).
func writeJSON(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: codificar %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: escribir %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: renombrar %s: %v", domain.ErrStorage, filepath.Base(path), err)
	}
	return nil
}
