package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"genefy/internal/catalog"
	"genefy/internal/domain"
)

// Pairing reúne lo que el scorer necesita de un par ya analizado.
type Pairing struct {
	Female     domain.AnimalTraitSnapshot
	Sire       domain.AnimalTraitSnapshot
	PPPV       domain.PPPVByCategory
	Inbreeding domain.InbreedingAnalysis
}

// ScoreCompatibility calcula el score 0-100, su grado y el desglose auditable.
func (e *MatingEngine) ScoreCompatibility(p Pairing, priorities domain.Priorities) domain.Compatibility {
	base, contributions := e.baseScore(p.PPPV, priorities)

	breakdown := domain.ScoreBreakdown{
		BaseScore:     base,
		Contributions: contributions,
		Adjustments:   make([]domain.Adjustment, 0, 6),
	}
	add := func(a *domain.Adjustment) {
		if a != nil {
			breakdown.Adjustments = append(breakdown.Adjustments, *a)
		}
	}

	add(e.genotypeBonus(p.Sire))
	add(e.complementarityBonus(p.PPPV))
	add(e.sustainabilityBonus(p.Sire))
	// Sin marcadores escaneados (raza desconocida) no hay nada que premiar.
	scanned := len(p.Inbreeding.HaplotypesScanned) > 0
	if scanned && len(p.Inbreeding.HaplotypeRisks) == 0 && e.scoring.HaplotypeFreeBonus > 0 {
		add(&domain.Adjustment{
			Code:   domain.AdjustHaplotypeFree,
			Delta:  e.scoring.HaplotypeFreeBonus,
			Detail: "no carrier found in haplotype scan",
		})
	}
	add(e.inbreedingPenalty(p.Inbreeding.ExpectedInbreeding))

	blocked := p.Inbreeding.HasLethalRisk()
	if blocked {
		add(&domain.Adjustment{
			Code:   domain.AdjustHaplotypeLethal,
			Delta:  -e.scoring.LethalHaplotypePenalty,
			Detail: "carrier x carrier: " + strings.Join(lethalKeys(p.Inbreeding), ", "),
		})
	}

	score := base
	for _, a := range breakdown.Adjustments {
		score += a.Delta
	}
	score = clamp(score, 0, 100)

	return domain.Compatibility{
		Score:     score,
		Grade:     e.scoring.Grade(score),
		Blocked:   blocked,
		Breakdown: breakdown,
	}
}

// baseScore: media ponderada de PPPV normalizados, escalada a 0-100.
func (e *MatingEngine) baseScore(pppv domain.PPPVByCategory, priorities domain.Priorities) (float64, []domain.TraitContribution) {
	contributions := make([]domain.TraitContribution, 0)
	var sumW, sumWN float64

	categories := make([]string, 0, len(pppv))
	for cat := range pppv {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		keys := make([]string, 0, len(pppv[cat]))
		for k := range pppv[cat] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			meta := e.registry.Resolve(key)
			n, ok := meta.Normalize(pppv[cat][key].PPPV)
			if !ok {
				continue
			}
			w := traitWeight(priorities, meta)
			if w == 0 {
				continue
			}
			sumW += w
			sumWN += w * n
			contributions = append(contributions, domain.TraitContribution{
				Trait:      key,
				Category:   cat,
				PPPV:       pppv[cat][key].PPPV,
				Normalized: n,
				Weight:     w,
			})
		}
	}

	if sumW == 0 {
		return e.scoring.NeutralBase, contributions
	}
	return clamp(100*sumWN/sumW, 0, 100), contributions
}

// traitWeight: peso del rasgo > peso de la categoría > 1 si no hay prioridades.
func traitWeight(p domain.Priorities, meta domain.TraitMetadata) float64 {
	if p.IsZero() {
		return 1
	}
	if w, ok := lookupWeight(p.Traits, meta.Key); ok {
		return math.Abs(w)
	}
	if w, ok := lookupWeight(p.Categories, meta.Category); ok {
		return math.Abs(w)
	}
	return 0
}

func lookupWeight(weights map[string]float64, key string) (float64, bool) {
	if w, ok := weights[key]; ok {
		return w, true
	}
	for k, w := range weights {
		if catalog.NormalizeKey(k) == key {
			return w, true
		}
	}
	return 0, false
}

func (e *MatingEngine) genotypeBonus(sire domain.AnimalTraitSnapshot) *domain.Adjustment {
	total := 0.0
	var details []string
	matched := make(map[string]struct{})
	for _, row := range e.scoring.GenotypeBonuses {
		if _, done := matched[row.Trait]; done {
			continue
		}
		v := strings.ToUpper(strings.TrimSpace(e.textValue(sire, row.Trait)))
		if v == "" || v != strings.ToUpper(row.Value) {
			continue
		}
		matched[row.Trait] = struct{}{}
		total += row.Points
		details = append(details, fmt.Sprintf("%s=%s", row.Trait, v))
	}
	if total == 0 {
		return nil
	}
	total = math.Min(total, e.scoring.GenotypeCap)
	return &domain.Adjustment{
		Code:   domain.AdjustGenotype,
		Delta:  total,
		Detail: "sire genotype " + strings.Join(details, ", "),
	}
}

// complementarityBonus premia rasgos donde el toro compensa una debilidad de la hembra.
func (e *MatingEngine) complementarityBonus(pppv domain.PPPVByCategory) *domain.Adjustment {
	cfg := e.scoring.Complementarity
	total := 0.0
	var traits []string
	for _, key := range cfg.Traits {
		meta := e.registry.Resolve(key)
		entry, ok := pppv.Get(meta.Key)
		if !ok || entry.Female == nil || entry.Bull == nil {
			continue
		}
		fn, ok := meta.Normalize(*entry.Female)
		if !ok {
			continue
		}
		bn, _ := meta.Normalize(*entry.Bull)
		if fn < cfg.WeakBelow && bn > cfg.StrongAbove {
			total += cfg.Points
			traits = append(traits, meta.Key)
		}
	}
	if total == 0 {
		return nil
	}
	return &domain.Adjustment{
		Code:   domain.AdjustComplementarity,
		Delta:  math.Min(total, cfg.Cap),
		Detail: "sire compensates " + strings.Join(traits, ", "),
	}
}

func (e *MatingEngine) sustainabilityBonus(sire domain.AnimalTraitSnapshot) *domain.Adjustment {
	cfg := e.scoring.Sustainability
	total := 0.0
	var details []string
	for _, rule := range cfg.Rules {
		v, ok, _ := e.numericValue(sire, rule.Trait)
		if !ok {
			continue
		}
		hit := v > rule.Threshold
		if rule.Below {
			hit = v < rule.Threshold
		}
		if hit {
			total += rule.Points
			details = append(details, fmt.Sprintf("%s=%g", rule.Trait, v))
		}
	}
	if total == 0 {
		return nil
	}
	return &domain.Adjustment{
		Code:   domain.AdjustSustainability,
		Delta:  math.Min(total, cfg.Cap),
		Detail: "sire " + strings.Join(details, ", "),
	}
}

// inbreedingPenalty descuenta por cada punto sobre el borde de la banda Alto.
func (e *MatingEngine) inbreedingPenalty(expected float64) *domain.Adjustment {
	over := expected - e.inbreeding.AltoFrom
	if over <= 0 || e.scoring.InbreedingPenaltyPerPoint == 0 {
		return nil
	}
	return &domain.Adjustment{
		Code:   domain.AdjustInbreeding,
		Delta:  -over * e.scoring.InbreedingPenaltyPerPoint,
		Detail: fmt.Sprintf("expected inbreeding %.2f%% over %.2f%%", expected, e.inbreeding.AltoFrom),
	}
}

func lethalKeys(a domain.InbreedingAnalysis) []string {
	var keys []string
	for _, r := range a.HaplotypeRisks {
		if r.Severity == domain.SeverityHigh {
			keys = append(keys, r.Haplotype)
		}
	}
	return keys
}

// clamp lleva NaN al mínimo para no propagarlo al score.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
