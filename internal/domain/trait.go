package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNonFinite se devuelve para NaN e infinitos, que no son valores de rasgo válidos.
var ErrNonFinite = errors.New("non-finite number")

// Categorías de rasgos. Cada rasgo pertenece a exactamente una.
const (
	TraitCategoryEconomic       = "economic"
	TraitCategoryProduction     = "production"
	TraitCategoryHealth         = "health"
	TraitCategoryFertility      = "fertility"
	TraitCategoryType           = "type"
	TraitCategoryEfficiency     = "efficiency"
	TraitCategorySustainability = "sustainability"
	TraitCategoryCalving        = "calving"
	TraitCategoryGenotype       = "genotype"
	TraitCategoryLongevity      = "longevity"
	TraitCategoryOther          = "other"
)

// Polarity indica el sentido de mejora de un rasgo.
type Polarity string

const (
	HigherIsBetter Polarity = "higher_is_better"
	LowerIsBetter  Polarity = "lower_is_better"
)

// ValueKind distingue rasgos numéricos de categóricos (genotipos).
type ValueKind string

const (
	KindNumeric     ValueKind = "numeric"
	KindCategorical ValueKind = "categorical"
)

// TraitMetadata describe un rasgo del catálogo.
type TraitMetadata struct {
	Key      string    `json:"key"`
	Category string    `json:"category"`
	Label    string    `json:"label"`
	Polarity Polarity  `json:"polarity"`
	Kind     ValueKind `json:"kind"`
	// Escala de referencia para normalizar PPPV. Nil = el rasgo no entra al score base.
	RefMin *float64 `json:"ref_min,omitempty"`
	RefMax *float64 `json:"ref_max,omitempty"`
}

// HasReference indica si el rasgo tiene una escala de referencia utilizable.
func (m TraitMetadata) HasReference() bool {
	return m.RefMin != nil && m.RefMax != nil && *m.RefMax != *m.RefMin
}

// Normalize proyecta un valor sobre [0,1] con la escala de referencia, invirtiendo
// los rasgos donde menor es mejor. Sin referencia devuelve false.
func (m TraitMetadata) Normalize(value float64) (float64, bool) {
	if !m.HasReference() {
		return 0, false
	}
	lo, hi := *m.RefMin, *m.RefMax
	n := (value - lo) / (hi - lo)
	if m.Polarity == LowerIsBetter {
		n = 1 - n
	}
	if n < 0 {
		n = 0
	}
	if n > 1 {
		n = 1
	}
	return n, true
}

// TraitValue es un valor de rasgo: numérico o categórico. El valor cero explícito
// se distingue de la ausencia porque la ausencia no tiene entrada en el mapa.
type TraitValue struct {
	Number *float64 `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Num construye un TraitValue numérico.
func Num(v float64) TraitValue {
	return TraitValue{Number: &v}
}

// Text construye un TraitValue categórico (o numérico aún sin parsear).
func Text(s string) TraitValue {
	return TraitValue{Text: s}
}

// Float devuelve el valor numérico. Un texto que no parsea devuelve ok=false y malformed=true.
func (v TraitValue) Float() (value float64, ok bool, malformed bool) {
	if v.Number != nil {
		if !IsFinite(*v.Number) {
			return 0, false, true
		}
		return *v.Number, true, false
	}
	s := strings.TrimSpace(v.Text)
	if s == "" {
		return 0, false, false
	}
	f, err := ParseNumber(s)
	if err != nil {
		return 0, false, true
	}
	return f, true, false
}

// ParseNumber acepta separadores de miles con coma ("1,743") y signo explícito.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !IsFinite(f) {
		return 0, ErrNonFinite
	}
	return f, nil
}

// IsFinite descarta NaN y ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
