package domain

import "time"

// MatingPlan es un acasalamiento guardado por la capa externa a partir de un PairingResult.
type MatingPlan struct {
	ID                 string        `json:"id"`
	FemaleID           string        `json:"female_id"`
	SireID             string        `json:"sire_id"`
	MatingType         string        `json:"mating_type"`
	Score              float64       `json:"score"`
	Grade              string        `json:"grade"`
	ExpectedInbreeding float64       `json:"expected_inbreeding"`
	Acceptable         bool          `json:"acceptable"`
	Result             PairingResult `json:"result"`
	Status             string        `json:"status"`
	Success            *bool         `json:"success,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	CreatedBy          string        `json:"created_by"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

const (
	MatingTypeManual = "manual"
	MatingTypeBatch  = "batch"

	MatingStatusPlanned   = "planned"
	MatingStatusConfirmed = "confirmed"
	MatingStatusCompleted = "completed"
	MatingStatusCancelled = "cancelled"
)

// MatingQuery filtra y pagina el listado de acasalamientos guardados.
type MatingQuery struct {
	Status   string
	FemaleID string
	SireID   string
	Page     int
	PerPage  int
}

// MatingUpdate aplica solo los campos no nulos.
type MatingUpdate struct {
	Status  *string `json:"status" binding:"omitempty,oneof=planned confirmed completed cancelled"`
	Success *bool   `json:"success"`
	Notes   *string `json:"notes"`
}

// IsEmpty indica que no hay nada que actualizar.
func (u MatingUpdate) IsEmpty() bool {
	return u.Status == nil && u.Success == nil && u.Notes == nil
}

// MatingPage es una página del listado, más recientes primero.
type MatingPage struct {
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Matings []MatingPlan `json:"matings"`
}

// SireFilter restringe el catálogo de toros antes del ranking.
type SireFilter struct {
	MinMilk           *float64 `json:"min_milk,omitempty"`
	MinNetMerit       *float64 `json:"min_net_merit,omitempty"`
	MinProductiveLife *float64 `json:"min_productive_life,omitempty"`
	BetaCasein        string   `json:"beta_casein,omitempty"`
	MaxGFI            *float64 `json:"max_gfi,omitempty"`
	Breed             string   `json:"breed,omitempty"`
}
