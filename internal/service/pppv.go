package service

import (
	"sort"

	"genefy/internal/domain"
)

// ComputePPPV calcula el valor predicho de la progenie por rasgo, agrupado por categoría.
//
// Ambos padres con valor: media aritmética. Un solo padre: ese valor.
// Ninguno: el rasgo no aparece. Sin redondeo: eso es de presentación.
// Con traitKeys vacío se usan todos los rasgos numéricos presentes en alguno de los padres.
func (e *MatingEngine) ComputePPPV(female, sire domain.AnimalTraitSnapshot, traitKeys []string) (domain.PPPVByCategory, []domain.FieldError) {
	if len(traitKeys) == 0 {
		traitKeys = e.presentNumericKeys(female, sire)
	}

	out := make(domain.PPPVByCategory)
	var fieldErrs []domain.FieldError
	for _, key := range traitKeys {
		meta := e.registry.Resolve(key)
		if meta.Kind != domain.KindNumeric {
			continue
		}

		fv, fok, ferr := e.numericValue(female, meta.Key)
		bv, bok, berr := e.numericValue(sire, meta.Key)
		if ferr != nil {
			fieldErrs = append(fieldErrs, *ferr)
		}
		if berr != nil {
			fieldErrs = append(fieldErrs, *berr)
		}

		var entry domain.PPPVEntry
		switch {
		case fok && bok:
			entry = domain.PPPVEntry{Female: &fv, Bull: &bv, PPPV: (fv + bv) / 2}
		case fok:
			entry = domain.PPPVEntry{Female: &fv, PPPV: fv}
		case bok:
			entry = domain.PPPVEntry{Bull: &bv, PPPV: bv}
		default:
			continue
		}

		if out[meta.Category] == nil {
			out[meta.Category] = make(map[string]domain.PPPVEntry)
		}
		out[meta.Category][meta.Key] = entry
	}
	return out, fieldErrs
}

func (e *MatingEngine) presentNumericKeys(animals ...domain.AnimalTraitSnapshot) []string {
	seen := make(map[string]struct{})
	for _, a := range animals {
		for category, byKey := range a.Traits {
			if category == domain.TraitCategoryGenotype {
				continue
			}
			for key := range byKey {
				seen[key] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
