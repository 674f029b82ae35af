package service

import (
	"go.uber.org/zap"

	"genefy/internal/domain"
)

// Textos canónicos del veredicto de consanguinidad.
const (
	recommendationIdeal     = "Acasalamento recomendado - consanguinidade ideal"
	recommendationMonitor   = "Acasalamento aceitável - monitorar progênie"
	recommendationAttention = "Atenção - considerar alternativas se disponível"
	recommendationHighInb   = "Acasalamento não recomendado - consanguinidade elevada"
	recommendationLethal    = "Acasalamento não recomendado - risco letal de haplótipos"

	haplotypeAvoid   = "avoid pairing"
	haplotypeMonitor = "monitor - progeny may be carrier"
)

// AnalyzeInbreeding estima la consanguinidad de la progenie, la clasifica en bandas
// y escanea haplotipos letales de la(s) raza(s) del par.
func (e *MatingEngine) AnalyzeInbreeding(female, sire domain.AnimalTraitSnapshot) domain.InbreedingAnalysis {
	out := domain.InbreedingAnalysis{
		FemaleGINB: finiteCopy(female.GenomicInbreeding),
		BullGFI:    finiteCopy(sire.FutureInbreeding),
	}

	if out.FemaleGINB != nil && out.BullGFI != nil {
		cfg := e.inbreeding
		ginb, gfi := *out.FemaleGINB, *out.BullGFI
		out.ExpectedInbreeding = cfg.FemaleWeight*ginb + cfg.SireWeight*gfi + cfg.Offset
		out.Method = domain.InbreedingMethodGenomic
	} else {
		out.ExpectedInbreeding = e.inbreeding.DefaultExpected
		out.Method = domain.InbreedingMethodEstimated
	}
	out.RiskLevel = e.riskBand(out.ExpectedInbreeding)

	breeds, haplotypes := e.haplotypes.ForPairing(female.Breed, sire.Breed)
	out.Breed = breeds
	out.HaplotypesScanned = haplotypes
	out.HaplotypeRisks = scanHaplotypes(female, sire, haplotypes)

	lethal := out.HasLethalRisk()
	out.Acceptable = out.RiskLevel != domain.RiskCritico && !lethal
	out.Recommendation = inbreedingRecommendation(out.RiskLevel, lethal)

	e.logger.Debug("inbreeding analysed",
		zap.String("female_id", female.ID),
		zap.String("sire_id", sire.ID),
		zap.Float64("expected", out.ExpectedInbreeding),
		zap.String("method", out.Method),
		zap.String("risk_level", string(out.RiskLevel)),
		zap.Int("haplotype_risks", len(out.HaplotypeRisks)),
	)
	return out
}

// riskBand: los bordes pertenecen a la banda superior.
func (e *MatingEngine) riskBand(expected float64) domain.RiskLevel {
	cfg := e.inbreeding
	switch {
	case expected >= cfg.CriticoFrom:
		return domain.RiskCritico
	case expected >= cfg.AltoFrom:
		return domain.RiskAlto
	case expected >= cfg.ModeradoFrom:
		return domain.RiskModerado
	default:
		return domain.RiskBaixo
	}
}

func scanHaplotypes(female, sire domain.AnimalTraitSnapshot, haplotypes []string) []domain.HaplotypeRisk {
	risks := make([]domain.HaplotypeRisk, 0)
	for _, h := range haplotypes {
		fs := female.HaplotypeStatus(h)
		bs := sire.HaplotypeStatus(h)
		fc := fs == domain.HaplotypeCarrier
		bc := bs == domain.HaplotypeCarrier

		switch {
		case fc && bc:
			risks = append(risks, domain.HaplotypeRisk{
				Haplotype:      h,
				FemaleStatus:   fs,
				BullStatus:     bs,
				Risk:           domain.HaplotypeRiskAlto,
				Severity:       domain.SeverityHigh,
				Probability:    "25%",
				Recommendation: haplotypeAvoid,
			})
		case fc || bc:
			risks = append(risks, domain.HaplotypeRisk{
				Haplotype:      h,
				FemaleStatus:   fs,
				BullStatus:     bs,
				Risk:           domain.HaplotypeRiskBaixo,
				Severity:       domain.SeverityLow,
				Recommendation: haplotypeMonitor,
			})
		}
	}
	return risks
}

func inbreedingRecommendation(band domain.RiskLevel, lethal bool) string {
	if lethal {
		return recommendationLethal
	}
	switch band {
	case domain.RiskBaixo:
		return recommendationIdeal
	case domain.RiskModerado:
		return recommendationMonitor
	case domain.RiskAlto:
		return recommendationAttention
	default:
		return recommendationHighInb
	}
}

// finiteCopy copia el valor; NaN o infinito cuentan como señal ausente.
func finiteCopy(v *float64) *float64 {
	if v == nil || !domain.IsFinite(*v) {
		return nil
	}
	c := *v
	return &c
}
