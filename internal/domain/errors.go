package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Política de propagación: los errores de almacenamiento se capturan y
// loguean en la frontera del gateway de persistencia; al suscriptor solo
// llegan re-prompts o el cierre genérico de sesión.
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrComboNotFound = errors.New("combo no encontrado en el catálogo")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrQueryTooShort = errors.New("búsqueda demasiado corta")
	ErrEmptyCart     = errors.New("el carrito está vacío")
	ErrEmptyCatalog  = errors.New("catálogo sin combos activos")
	ErrStorage       = errors.New("fallo de almacenamiento")
)
