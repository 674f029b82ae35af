package service

import (
	"go.uber.org/zap"

	"genefy/internal/domain"
	"genefy/internal/metrics"
)

// Códigos estables de avisos y destaques. La capa de presentación decide cómo mostrarlos.
const (
	WarningLethalHaplotype = "lethal_haplotype"
	WarningInbreedingHigh  = "inbreeding_high"
	WarningInbreedingCrit  = "inbreeding_critical"

	HighlightTopGrade      = "top_grade"
	HighlightGenotype      = "desirable_genotype"
	HighlightLowInbreeding = "low_inbreeding"
	HighlightSustainable   = "sustainability"
)

// Fracción de la progenie afectada cuando ambos padres portan el mismo haplotipo letal.
const lethalProgenyPercent = 25.0

// Recommend ejecuta el pipeline completo para un par hembra x toro:
// PPPV, consanguinidad, score y veredicto final.
func (e *MatingEngine) Recommend(female, sire domain.AnimalTraitSnapshot, priorities domain.Priorities) domain.PairingResult {
	pppv, fieldErrs := e.ComputePPPV(female, sire, nil)
	inb := e.AnalyzeInbreeding(female, sire)
	comp := e.ScoreCompatibility(Pairing{
		Female:     female,
		Sire:       sire,
		PPPV:       pppv,
		Inbreeding: inb,
	}, priorities)

	result := domain.PairingResult{
		FemaleID:      female.ID,
		SireID:        sire.ID,
		PPPV:          pppv,
		Inbreeding:    inb,
		Compatibility: comp,
		Warnings:      e.warnings(inb),
		Highlights:    e.highlights(inb, comp),
		FieldErrors:   fieldErrs,
		Acceptable:    inb.Acceptable && !comp.Blocked,
	}
	result.Status = e.pairingStatus(comp.Score, inb.ExpectedInbreeding, result.Acceptable)

	metrics.RecordEvaluation(comp.Grade, result.Acceptable, len(lethalKeys(inb)))
	e.logger.Debug("pairing evaluated",
		zap.String("female_id", female.ID),
		zap.String("sire_id", sire.ID),
		zap.Float64("score", comp.Score),
		zap.String("grade", comp.Grade),
		zap.Bool("acceptable", result.Acceptable),
		zap.String("status", result.Status),
		zap.Int("field_errors", len(fieldErrs)),
	)
	return result
}

// pairingStatus clasifica el par con los cortes de score y consanguinidad del catálogo.
func (e *MatingEngine) pairingStatus(score, inbreeding float64, acceptable bool) string {
	cfg := e.status
	switch {
	case !acceptable:
		return domain.StatusNotRecommended
	case score >= cfg.HighlyRecommendedScore && inbreeding <= cfg.RecommendedMaxInbreeding:
		return domain.StatusHighlyRecommended
	case score >= cfg.RecommendedScore && inbreeding <= cfg.RecommendedMaxInbreeding:
		return domain.StatusRecommended
	case score >= cfg.AcceptableScore || inbreeding <= cfg.AcceptableMaxInbreeding:
		return domain.StatusAcceptable
	default:
		return domain.StatusNotRecommended
	}
}

func (e *MatingEngine) warnings(inb domain.InbreedingAnalysis) []domain.Notice {
	out := make([]domain.Notice, 0)
	for _, r := range inb.HaplotypeRisks {
		if r.Severity != domain.SeverityHigh {
			continue
		}
		out = append(out, domain.Notice{
			Code:      WarningLethalHaplotype,
			Haplotype: r.Haplotype,
			Percent:   ptr(lethalProgenyPercent),
		})
	}
	switch inb.RiskLevel {
	case domain.RiskAlto:
		out = append(out, domain.Notice{Code: WarningInbreedingHigh, Percent: ptr(inb.ExpectedInbreeding)})
	case domain.RiskCritico:
		out = append(out, domain.Notice{Code: WarningInbreedingCrit, Percent: ptr(inb.ExpectedInbreeding)})
	}
	return out
}

func (e *MatingEngine) highlights(inb domain.InbreedingAnalysis, comp domain.Compatibility) []domain.Notice {
	out := make([]domain.Notice, 0)
	if min, ok := e.scoring.GradeMin("A"); ok && comp.Score >= min {
		out = append(out, domain.Notice{Code: HighlightTopGrade, Score: ptr(comp.Score), Grade: comp.Grade})
	}
	if pts := comp.Breakdown.Total(domain.AdjustGenotype); pts > 0 {
		out = append(out, domain.Notice{Code: HighlightGenotype, Points: pts})
	}
	if inb.RiskLevel == domain.RiskBaixo {
		out = append(out, domain.Notice{Code: HighlightLowInbreeding, Percent: ptr(inb.ExpectedInbreeding)})
	}
	if pts := comp.Breakdown.Total(domain.AdjustSustainability); pts > 0 {
		out = append(out, domain.Notice{Code: HighlightSustainable, Points: pts})
	}
	return out
}

func ptr(v float64) *float64 { return &v }
