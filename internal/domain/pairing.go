package domain

// PPPVEntry es el valor predicho de la progenie para un rasgo.
// Female/Bull son nil cuando ese progenitor no aporta valor.
type PPPVEntry struct {
	Female *float64 `json:"female"`
	Bull   *float64 `json:"bull"`
	PPPV   float64  `json:"pppv"`
}

// PPPVByCategory agrupa categoría -> rasgo -> entrada.
type PPPVByCategory map[string]map[string]PPPVEntry

// Get devuelve la entrada de un rasgo buscando en todas las categorías.
func (p PPPVByCategory) Get(key string) (PPPVEntry, bool) {
	for _, byKey := range p {
		if e, ok := byKey[key]; ok {
			return e, true
		}
	}
	return PPPVEntry{}, false
}

// Len cuenta los rasgos calculados.
func (p PPPVByCategory) Len() int {
	n := 0
	for _, byKey := range p {
		n += len(byKey)
	}
	return n
}

// RiskLevel es la banda de consanguinidad esperada.
type RiskLevel string

const (
	RiskBaixo    RiskLevel = "Baixo"
	RiskModerado RiskLevel = "Moderado"
	RiskAlto     RiskLevel = "Alto"
	RiskCritico  RiskLevel = "Crítico"
)

// HaplotypeSeverity clasifica un hallazgo del escaneo de haplotipos.
type HaplotypeSeverity string

const (
	SeverityHigh HaplotypeSeverity = "high"
	SeverityLow  HaplotypeSeverity = "low"
)

// Etiquetas de riesgo por haplotipo.
const (
	HaplotypeRiskAlto  = "ALTO (25%)"
	HaplotypeRiskBaixo = "BAIXO"
)

// HaplotypeRisk es una entrada del escaneo para un marcador letal.
type HaplotypeRisk struct {
	Haplotype      string            `json:"haplotype"`
	FemaleStatus   HaplotypeStatus   `json:"female_status"`
	BullStatus     HaplotypeStatus   `json:"bull_status"`
	Risk           string            `json:"risk"`
	Severity       HaplotypeSeverity `json:"severity"`
	Probability    string            `json:"probability,omitempty"`
	Recommendation string            `json:"recommendation"`
}

// Métodos de estimación de consanguinidad.
const (
	InbreedingMethodGenomic   = "genomic"
	InbreedingMethodEstimated = "estimated"
)

// InbreedingAnalysis es la salida del analizador de consanguinidad.
type InbreedingAnalysis struct {
	ExpectedInbreeding float64         `json:"expected_inbreeding"`
	Method             string          `json:"method"`
	FemaleGINB         *float64        `json:"female_ginb,omitempty"`
	BullGFI            *float64        `json:"bull_gfi,omitempty"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	Breed              []string        `json:"breeds"`
	HaplotypesScanned  []string        `json:"haplotypes_scanned"`
	HaplotypeRisks     []HaplotypeRisk `json:"haplotype_risks"`
	Acceptable         bool            `json:"acceptable"`
	Recommendation     string          `json:"recommendation"`
}

// HasLethalRisk indica si hay algún haplotipo Carrier x Carrier.
func (a InbreedingAnalysis) HasLethalRisk() bool {
	for _, r := range a.HaplotypeRisks {
		if r.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// Códigos de ajuste del score.
const (
	AdjustGenotype        = "genotype_bonus"
	AdjustComplementarity = "complementarity_bonus"
	AdjustSustainability  = "sustainability_bonus"
	AdjustHaplotypeFree   = "haplotype_free_bonus"
	AdjustInbreeding      = "inbreeding_penalty"
	AdjustHaplotypeLethal = "haplotype_lethal_penalty"
)

// Adjustment es un bono o penalización aplicado, con su motivo.
type Adjustment struct {
	Code   string  `json:"code"`
	Delta  float64 `json:"delta"`
	Detail string  `json:"detail"`
}

// TraitContribution documenta el aporte de un rasgo al score base.
type TraitContribution struct {
	Trait      string  `json:"trait"`
	Category   string  `json:"category"`
	PPPV       float64 `json:"pppv"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
}

// ScoreBreakdown permite auditar cómo se llegó al score.
type ScoreBreakdown struct {
	BaseScore     float64             `json:"base_score"`
	Contributions []TraitContribution `json:"contributions"`
	Adjustments   []Adjustment        `json:"adjustments"`
}

// Total suma los deltas de una familia de ajustes.
func (b ScoreBreakdown) Total(code string) float64 {
	total := 0.0
	for _, a := range b.Adjustments {
		if a.Code == code {
			total += a.Delta
		}
	}
	return total
}

// Compatibility es la salida del scorer.
type Compatibility struct {
	Score     float64        `json:"score"`
	Grade     string         `json:"grade"`
	Blocked   bool           `json:"blocked"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Notice es un aviso o destaque con código estable y los datos que lo motivan.
// El texto a mostrar lo arma la capa de presentación.
type Notice struct {
	Code      string   `json:"code"`
	Haplotype string   `json:"haplotype,omitempty"`
	Percent   *float64 `json:"percent,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Grade     string   `json:"grade,omitempty"`
	Points    float64  `json:"points,omitempty"`
}

// Estados de recomendación de un par.
const (
	StatusHighlyRecommended = "highly_recommended"
	StatusRecommended       = "recommended"
	StatusAcceptable        = "acceptable"
	StatusNotRecommended    = "not_recommended"
)

// PairingResult se crea por evaluación y pertenece al llamador; el motor no lo persiste.
type PairingResult struct {
	FemaleID      string             `json:"female_id"`
	SireID        string             `json:"sire_id"`
	PPPV          PPPVByCategory     `json:"pppv"`
	Inbreeding    InbreedingAnalysis `json:"inbreeding"`
	Compatibility Compatibility      `json:"compatibility"`
	Warnings      []Notice           `json:"warnings"`
	Highlights    []Notice           `json:"highlights"`
	FieldErrors   []FieldError       `json:"field_errors,omitempty"`
	Acceptable    bool               `json:"acceptable"`
	Status        string             `json:"status"`
}

// Priorities define pesos por rasgo y por categoría. El peso por rasgo gana.
type Priorities struct {
	Traits     map[string]float64 `json:"traits,omitempty"`
	Categories map[string]float64 `json:"categories,omitempty"`
}

// IsZero indica que no se pidieron prioridades (pesos uniformes).
func (p Priorities) IsZero() bool {
	return len(p.Traits) == 0 && len(p.Categories) == 0
}
