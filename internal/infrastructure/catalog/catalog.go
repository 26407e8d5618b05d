// Package catalog resuelve el catálogo de combos con tres niveles de
// respaldo: base de datos, archivo YAML de overrides y lista estática
// embebida. El menú nunca puede quedar vacío.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/taborder/ussd-api/internal/domain"
	"github.com/taborder/ussd-api/internal/domain/entity"
	"github.com/taborder/ussd-api/internal/domain/repository"
	"github.com/taborder/ussd-api/pkg/logger"
)

// Provider catálogo con carga perezosa y caché en memoria.
// Orden de resolución: repo durable -> archivo YAML -> lista embebida.
type Provider struct {
	repo     repository.ComboRepository // nil en modo solo-archivos
	yamlPath string

	mu     sync.RWMutex
	cached []entity.Combo

	log *logger.Logger
}

// New construye el proveedor. repo puede ser nil; yamlPath puede ser vacío.
func New(repo repository.ComboRepository, yamlPath string, log *logger.Logger) *Provider {
	return &Provider{repo: repo, yamlPath: yamlPath, log: log}
}

// Combos devuelve el catálogo activo. La primera llamada resuelve la fuente
// y cachea; las siguientes sirven desde memoria.
func (p *Provider) Combos() []entity.Combo {
	p.mu.RLock()
	if p.cached != nil {
		defer p.mu.RUnlock()
		return p.cached
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached == nil {
		p.cached = p.resolve()
	}
	return p.cached
}

// ByID busca un combo por su identificador de catálogo.
func (p *Provider) ByID(id int) (entity.Combo, bool) {
	for _, c := range p.Combos() {
		if c.ID == id {
			return c, true
		}
	}
	return entity.Combo{}, false
}

// Count cantidad de combos activos (para /health).
func (p *Provider) Count() int { return len(p.Combos()) }

// Invalidate descarta la caché; la próxima lectura vuelve a resolver la fuente.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *Provider) resolve() []entity.Combo {
	if p.repo != nil {
		combos, err := p.repo.ListActive()
		if err == nil && len(combos) == 0 {
			err = domain.ErrEmptyCatalog
		}
		if err != nil {
			p.log.Warn().Err(err).Msg("catálogo durable no disponible; probando overrides")
		} else {
			p.log.Info().Int("combos", len(combos)).Msg("catálogo cargado desde la base")
			return combos
		}
	}
	if p.yamlPath != "" {
		combos, err := loadYAML(p.yamlPath)
		if err == nil && len(combos) == 0 {
			err = domain.ErrEmptyCatalog
		}
		if err != nil {
			p.log.Warn().Err(err).Str("file", p.yamlPath).Msg("overrides de catálogo no disponibles; usando lista embebida")
		} else {
			p.log.Info().Int("combos", len(combos)).Str("file", p.yamlPath).Msg("catálogo cargado desde overrides")
			return combos
		}
	}
	return Builtin()
}

func loadYAML(path string) ([]entity.Combo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc struct {
		Combos []entity.Combo `yaml:"combos"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return doc.Combos, nil
}

// Builtin lista de combos embebida, el último nivel de respaldo.
func Builtin() []entity.Combo {
	return []entity.Combo{
		{
			ID: 1, Name: "Essential Groceries", Category: "basic",
			Price:       decimal.NewFromInt(45),
			Description: "Daily essentials",
			Items:       []string{"Maize meal 2kg", "Oil 750ml", "Sugar 1kg", "Salt 500g"},
			Keywords:    []string{"basic", "essential", "daily", "staple", "grocery"},
		},
		{
			ID: 2, Name: "Family Pack", Category: "family",
			Price:       decimal.NewFromInt(120),
			Description: "Complete family nutrition",
			Items:       []string{"All basics", "Meat 1kg", "Vegetables", "Bread", "Milk"},
			Keywords:    []string{"family", "premium", "complete", "nutrition", "meat"},
		},
		{
			ID: 3, Name: "Baby Care Bundle", Category: "baby",
			Price:       decimal.NewFromInt(85),
			Description: "Everything for baby",
			Items:       []string{"Diapers 20pk", "Baby formula", "Baby food", "Wet wipes"},
			Keywords:    []string{"baby", "infant", "care", "diaper", "formula"},
		},
		{
			ID: 4, Name: "Household Cleaning", Category: "cleaning",
			Price:       decimal.NewFromInt(65),
			Description: "Clean home essentials",
			Items:       []string{"Detergent", "Toilet paper", "Soap", "Bleach"},
			Keywords:    []string{"cleaning", "household", "soap", "detergent", "clean"},
		},
		{
			ID: 5, Name: "Student Survival Kit", Category: "student",
			Price:       decimal.NewFromInt(35),
			Description: "Budget student meals",
			Items:       []string{"Instant noodles", "Canned beans", "Peanut butter", "Bread"},
			Keywords:    []string{"student", "budget", "cheap", "noodles", "affordable"},
		},
		{
			ID: 6, Name: "Breakfast Special", Category: "breakfast",
			Price:       decimal.NewFromInt(40),
			Description: "Start your day right",
			Items:       []string{"Cereal", "Milk", "Bread", "Eggs", "Coffee"},
			Keywords:    []string{"breakfast", "morning", "cereal", "coffee", "eggs"},
		},
	}
}
