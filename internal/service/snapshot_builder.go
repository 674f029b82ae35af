package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"genefy/internal/catalog"
	"genefy/internal/domain"
)

var (
	genomicInbreedingAliases = map[string]struct{}{"genomic_inbreeding": {}, "ginb": {}, "g_inb": {}}
	futureInbreedingAliases  = map[string]struct{}{"future_inbreeding": {}, "gfi": {}, "genomic_future_inbreeding": {}}
)

// SnapshotBuilder convierte registros planos en el snapshot canónico agrupado por categoría.
type SnapshotBuilder struct {
	registry   *catalog.Registry
	haplotypes *catalog.HaplotypeCatalog
}

func NewSnapshotBuilder(registry *catalog.Registry, haplotypes *catalog.HaplotypeCatalog) *SnapshotBuilder {
	return &SnapshotBuilder{registry: registry, haplotypes: haplotypes}
}

// Build resuelve alias, parsea números y estados de haplotipo. Los números mal formados
// quedan fuera del snapshot y se reportan como errores de campo.
func (b *SnapshotBuilder) Build(raw domain.RawAnimal) (domain.AnimalTraitSnapshot, []domain.FieldError) {
	snap := domain.AnimalTraitSnapshot{
		ID:         raw.ID,
		Code:       raw.Code,
		Name:       raw.Name,
		Breed:      b.haplotypes.BreedCode(raw.Breed),
		Sex:        raw.Sex,
		Traits:     make(map[string]map[string]domain.TraitValue),
		Haplotypes: make(map[string]domain.HaplotypeStatus),
	}
	var fieldErrs []domain.FieldError
	malformed := func(field string, v any) {
		fieldErrs = append(fieldErrs, domain.FieldError{
			AnimalID: raw.ID,
			Field:    field,
			Value:    fmt.Sprint(v),
			Reason:   "non-numeric value for numeric trait",
		})
	}

	for rawKey, v := range raw.Values {
		if v == nil {
			continue
		}
		key := catalog.NormalizeKey(rawKey)

		if _, ok := genomicInbreedingAliases[key]; ok {
			if f, ok := toFloat(v); ok {
				snap.GenomicInbreeding = &f
			} else if !isBlank(v) {
				malformed(key, v)
			}
			continue
		}
		if _, ok := futureInbreedingAliases[key]; ok {
			if f, ok := toFloat(v); ok {
				snap.FutureInbreeding = &f
			} else if !isBlank(v) {
				malformed(key, v)
			}
			continue
		}
		if b.haplotypes.IsHaplotype(key) {
			snap.Haplotypes[key] = haplotypeStatus(v)
			continue
		}

		meta := b.registry.Resolve(b.registry.Canonical(key))
		if meta.Kind == domain.KindCategorical {
			text := strings.ToUpper(strings.TrimSpace(fmt.Sprint(v)))
			if text != "" {
				setTrait(snap.Traits, meta, domain.Text(text))
			}
			continue
		}
		if isBlank(v) {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			// Texto libre fuera del catálogo (origen, registro...) no es un rasgo.
			if _, known := b.registry.Lookup(meta.Key); known {
				malformed(meta.Key, v)
			}
			continue
		}
		setTrait(snap.Traits, meta, domain.Num(f))
	}
	return snap, fieldErrs
}

func setTrait(traits map[string]map[string]domain.TraitValue, meta domain.TraitMetadata, v domain.TraitValue) {
	if traits[meta.Category] == nil {
		traits[meta.Category] = make(map[string]domain.TraitValue)
	}
	traits[meta.Category][meta.Key] = v
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, false
		}
	case string:
		n, err := domain.ParseNumber(x)
		return n, err == nil
	default:
		return 0, false
	}
	return f, domain.IsFinite(f)
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// haplotypeStatus acepta texto (T/C/FREE/...) o numérico (0 libre, otro portador).
func haplotypeStatus(v any) domain.HaplotypeStatus {
	if f, ok := v.(float64); ok {
		if !domain.IsFinite(f) {
			return domain.HaplotypeUnknown
		}
		if f == 0 {
			return domain.HaplotypeFree
		}
		return domain.HaplotypeCarrier
	}
	return domain.ParseHaplotypeStatus(fmt.Sprint(v))
}
