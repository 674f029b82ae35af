package domain

import "strings"

// Sex del animal dentro de un acasalamiento.
type Sex string

const (
	SexFemale Sex = "female"
	SexSire   Sex = "sire"
)

// HaplotypeStatus admite exactamente tres valores.
type HaplotypeStatus string

const (
	HaplotypeFree    HaplotypeStatus = "Free"
	HaplotypeCarrier HaplotypeStatus = "Carrier"
	HaplotypeUnknown HaplotypeStatus = "Unknown"
)

// ParseHaplotypeStatus interpreta las codificaciones de importación (T/F/FREE/0, C/CARRIER/1).
func ParseHaplotypeStatus(raw string) HaplotypeStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "T", "F", "FREE", "TESTED FREE", "TF", "0":
		return HaplotypeFree
	case "C", "CARRIER", "TC", "1":
		return HaplotypeCarrier
	default:
		return HaplotypeUnknown
	}
}

// AnimalTraitSnapshot es el registro canónico de un animal, agrupado por categoría.
// Lo crea la importación; el motor solo lo lee.
type AnimalTraitSnapshot struct {
	ID                string                           `json:"id"`
	Code              string                           `json:"code,omitempty"`
	Name              string                           `json:"name,omitempty"`
	Breed             string                           `json:"breed,omitempty"`
	Sex               Sex                              `json:"sex"`
	Traits            map[string]map[string]TraitValue `json:"traits"`
	GenomicInbreeding *float64                         `json:"genomic_inbreeding,omitempty"`
	FutureInbreeding  *float64                         `json:"future_inbreeding,omitempty"`
	Haplotypes        map[string]HaplotypeStatus       `json:"haplotypes,omitempty"`
}

// Value busca un rasgo en su categoría. Un único camino de búsqueda.
func (a AnimalTraitSnapshot) Value(category, key string) (TraitValue, bool) {
	byKey, ok := a.Traits[category]
	if !ok {
		return TraitValue{}, false
	}
	v, ok := byKey[key]
	return v, ok
}

// HaplotypeStatus devuelve Unknown cuando el marcador no fue informado.
func (a AnimalTraitSnapshot) HaplotypeStatus(key string) HaplotypeStatus {
	s, ok := a.Haplotypes[key]
	if !ok || s == "" {
		return HaplotypeUnknown
	}
	return s
}

// RawAnimal es un registro plano tal como llega de la importación o de la columna JSONB.
type RawAnimal struct {
	ID     string         `json:"id"`
	Code   string         `json:"code,omitempty"`
	Name   string         `json:"name,omitempty"`
	Breed  string         `json:"breed,omitempty"`
	Sex    Sex            `json:"sex"`
	Values map[string]any `json:"values"`
}

// FieldError reporta un dato malformado sin abortar el cálculo.
type FieldError struct {
	AnimalID string `json:"animal_id"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Reason   string `json:"reason"`
}
