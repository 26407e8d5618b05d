package search

import (
	"sort"
	"strings"

	"github.com/taborder/ussd-api/internal/domain"
	"github.com/taborder/ussd-api/internal/domain/entity"
)

// MinQueryLen largo mínimo de consulta.
const MinQueryLen = 2

// Validate rechaza consultas más cortas que el mínimo.
func Validate(query string) error {
	if len(query) < MinQueryLen {
		return domain.ErrQueryTooShort
	}
	return nil
}

// maxResults tope de resultados devueltos.
const maxResults = 6

// Pesos de relevancia por campo.
const (
	nameWeight        = 10
	categoryWeight    = 8
	keywordWeight     = 5
	descriptionWeight = 3
)

// Score relevancia de un combo frente a la consulta: contención de substring
// insensible a mayúsculas sobre nombre, categoría, keywords y descripción.
func Score(query string, combo entity.Combo) int {
	q := strings.ToLower(query)
	score := 0

	if strings.Contains(strings.ToLower(combo.Name), q) {
		score += nameWeight
	}
	if strings.Contains(strings.ToLower(combo.Category), q) {
		score += categoryWeight
	}
	for _, kw := range combo.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			score += keywordWeight
		}
	}
	if strings.Contains(strings.ToLower(combo.Description), q) {
		score += descriptionWeight
	}

	return score
}

// Combos filtra y ordena el catálogo por relevancia descendente. Orden
// estable: a igual score se conserva el orden del catálogo. Top 6.
func Combos(query string, catalog []entity.Combo) []entity.Combo {
	type match struct {
		combo entity.Combo
		score int
	}

	var matches []match
	for _, c := range catalog {
		if s := Score(query, c); s > 0 {
			matches = append(matches, match{combo: c, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out := make([]entity.Combo, len(matches))
	for i, m := range matches {
		out[i] = m.combo
	}
	return out
}
