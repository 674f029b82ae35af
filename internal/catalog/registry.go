package catalog

import (
	"fmt"
	"sort"
	"strings"

	"genefy/internal/domain"
)

// Registry es el catálogo estático de rasgos. Inmutable tras NewRegistry.
type Registry struct {
	byKey      map[string]domain.TraitMetadata
	aliases    map[string]string
	byCategory map[string][]string
}

// NewRegistry construye el registro a partir de las definiciones del catálogo.
func NewRegistry(defs []TraitDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}
	r := &Registry{
		byKey:      make(map[string]domain.TraitMetadata, len(defs)),
		aliases:    make(map[string]string),
		byCategory: make(map[string][]string),
	}
	for _, d := range defs {
		key := NormalizeKey(d.Key)
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("%w: duplicated trait key %q", ErrInvalidCatalog, key)
		}
		meta := domain.TraitMetadata{
			Key:      key,
			Category: d.Category,
			Label:    d.Label,
			Polarity: domain.HigherIsBetter,
			Kind:     domain.KindNumeric,
			RefMin:   d.RefMin,
			RefMax:   d.RefMax,
		}
		if meta.Label == "" {
			meta.Label = strings.ToUpper(key)
		}
		if d.LowerIsBetter {
			meta.Polarity = domain.LowerIsBetter
		}
		if d.Categorical {
			meta.Kind = domain.KindCategorical
		}
		r.byKey[key] = meta
		r.byCategory[meta.Category] = append(r.byCategory[meta.Category], key)
		for _, a := range d.Aliases {
			r.aliases[NormalizeKey(a)] = key
		}
	}
	for cat := range r.byCategory {
		sort.Strings(r.byCategory[cat])
	}
	return r, nil
}

// Resolve nunca falla: una clave desconocida sintetiza metadata en la categoría "other".
// Acepta alias y nombres con espacios ("Net Merit", "PL").
func (r *Registry) Resolve(key string) domain.TraitMetadata {
	k := r.Canonical(key)
	if meta, ok := r.byKey[k]; ok {
		return meta
	}
	return domain.TraitMetadata{
		Key:      k,
		Category: domain.TraitCategoryOther,
		Label:    strings.ToUpper(k),
		Polarity: domain.HigherIsBetter,
		Kind:     domain.KindNumeric,
	}
}

// Lookup devuelve la metadata solo si el rasgo está catalogado.
func (r *Registry) Lookup(key string) (domain.TraitMetadata, bool) {
	meta, ok := r.byKey[r.Canonical(key)]
	return meta, ok
}

// Canonical resuelve alias de importación ("PRODUCTIVE LIFE", "PL") a la clave canónica.
func (r *Registry) Canonical(raw string) string {
	k := NormalizeKey(raw)
	if _, ok := r.byKey[k]; ok {
		return k
	}
	if canonical, ok := r.aliases[k]; ok {
		return canonical
	}
	return k
}

// Keys lista las claves de una categoría en orden alfabético.
func (r *Registry) Keys(category string) []string {
	return append([]string(nil), r.byCategory[category]...)
}

// Categories lista las categorías con al menos un rasgo, ordenadas.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.byCategory))
	for cat := range r.byCategory {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// All devuelve toda la metadata ordenada por categoría y clave.
func (r *Registry) All() []domain.TraitMetadata {
	out := make([]domain.TraitMetadata, 0, len(r.byKey))
	for _, cat := range r.Categories() {
		for _, k := range r.byCategory[cat] {
			out = append(out, r.byKey[k])
		}
	}
	return out
}

// Len cuenta los rasgos catalogados.
func (r *Registry) Len() int {
	return len(r.byKey)
}
