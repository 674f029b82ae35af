package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrEmptyCatalog   = errors.New("catalog: empty trait registry or haplotype catalog")
	ErrInvalidCatalog = errors.New("catalog: invalid configuration")
)

// Catalog es la configuración inmutable del motor: rasgos, haplotipos, umbrales y tablas.
// Se carga una vez al iniciar el proceso.
type Catalog struct {
	Version      string              `toml:"version" validate:"required"`
	DefaultBreed string              `toml:"default_breed" validate:"required"`
	Traits       []TraitDefinition   `toml:"traits" validate:"dive"`
	Haplotypes   map[string][]string `toml:"haplotypes"`
	BreedAliases map[string]string   `toml:"breed_aliases"`
	Inbreeding   InbreedingConfig    `toml:"inbreeding"`
	Scoring      ScoringConfig       `toml:"scoring"`
	Status       StatusConfig        `toml:"status"`
}

// TraitDefinition es una entrada del registro tal como se escribe en el TOML.
type TraitDefinition struct {
	Key           string   `toml:"key" validate:"required"`
	Category      string   `toml:"category" validate:"required,oneof=economic production health fertility type efficiency sustainability calving genotype longevity other"`
	Label         string   `toml:"label"`
	LowerIsBetter bool     `toml:"lower_is_better"`
	Categorical   bool     `toml:"categorical"`
	RefMin        *float64 `toml:"ref_min"`
	RefMax        *float64 `toml:"ref_max"`
	Aliases       []string `toml:"aliases"`
}

// InbreedingConfig parametriza la combinación genómica y las bandas de riesgo.
type InbreedingConfig struct {
	// expected = FemaleWeight*gINB + SireWeight*GFI + Offset
	FemaleWeight float64 `toml:"female_weight" validate:"gte=0"`
	SireWeight   float64 `toml:"sire_weight" validate:"gte=0"`
	Offset       float64 `toml:"offset"`
	// Valor conservador cuando falta la señal genómica de algún lado.
	DefaultExpected float64 `toml:"default_expected" validate:"gte=0"`
	ModeradoFrom    float64 `toml:"moderado_from" validate:"gt=0"`
	AltoFrom        float64 `toml:"alto_from" validate:"gtfield=ModeradoFrom"`
	CriticoFrom     float64 `toml:"critico_from" validate:"gtfield=AltoFrom"`
}

// ScoringConfig agrupa tablas y topes del scorer.
type ScoringConfig struct {
	NeutralBase               float64               `toml:"neutral_base" validate:"gte=0,lte=100"`
	Grades                    []GradeBand           `toml:"grades" validate:"required,min=1,dive"`
	GenotypeBonuses           []GenotypeBonus       `toml:"genotype_bonuses" validate:"dive"`
	GenotypeCap               float64               `toml:"genotype_cap" validate:"gte=0"`
	Complementarity           ComplementarityConfig `toml:"complementarity"`
	Sustainability            SustainabilityConfig  `toml:"sustainability"`
	HaplotypeFreeBonus        float64               `toml:"haplotype_free_bonus" validate:"gte=0"`
	InbreedingPenaltyPerPoint float64               `toml:"inbreeding_penalty_per_point" validate:"gte=0"`
	LethalHaplotypePenalty    float64               `toml:"lethal_haplotype_penalty" validate:"gte=0"`
}

// GradeBand: Min inclusivo, Max exclusivo salvo la banda superior que incluye 100.
type GradeBand struct {
	Letter string  `toml:"letter" validate:"required"`
	Min    float64 `toml:"min" validate:"gte=0,lte=100"`
	Max    float64 `toml:"max" validate:"gtfield=Min,lte=100"`
}

// GenotypeBonus es una fila de la tabla de alelos deseables (se evalúa sobre el toro).
type GenotypeBonus struct {
	Trait  string  `toml:"trait" validate:"required"`
	Value  string  `toml:"value" validate:"required"`
	Points float64 `toml:"points" validate:"gt=0"`
}

type ComplementarityConfig struct {
	Traits      []string `toml:"traits"`
	WeakBelow   float64  `toml:"weak_below" validate:"gte=0,lte=1"`
	StrongAbove float64  `toml:"strong_above" validate:"gte=0,lte=1"`
	Points      float64  `toml:"points" validate:"gte=0"`
	Cap         float64  `toml:"cap" validate:"gte=0"`
}

type SustainabilityConfig struct {
	Rules []SustainabilityRule `toml:"rules" validate:"dive"`
	Cap   float64              `toml:"cap" validate:"gte=0"`
}

// SustainabilityRule otorga puntos cuando el valor del toro supera (o queda bajo) el umbral.
type SustainabilityRule struct {
	Trait     string  `toml:"trait" validate:"required"`
	Threshold float64 `toml:"threshold"`
	Below     bool    `toml:"below"`
	Points    float64 `toml:"points" validate:"gt=0"`
}

// StatusConfig define los cortes del estado de recomendación de un par.
// Un par no aceptable es siempre not_recommended.
type StatusConfig struct {
	HighlyRecommendedScore float64 `toml:"highly_recommended_score" validate:"gtefield=RecommendedScore,lte=100"`
	RecommendedScore       float64 `toml:"recommended_score" validate:"gtefield=AcceptableScore,lte=100"`
	AcceptableScore        float64 `toml:"acceptable_score" validate:"gte=0,lte=100"`
	// Consanguinidad máxima para los dos estados superiores.
	RecommendedMaxInbreeding float64 `toml:"recommended_max_inbreeding" validate:"gte=0"`
	// Con score bajo el par sigue aceptable si no supera este valor.
	AcceptableMaxInbreeding float64 `toml:"acceptable_max_inbreeding" validate:"gtefield=RecommendedMaxInbreeding"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Load lee un catálogo TOML. Con path vacío devuelve el catálogo por defecto.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodifica y valida un catálogo TOML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog toml: %w", err)
	}
	if c.Status == (StatusConfig{}) {
		c.Status = defaultStatus()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rechaza catálogos vacíos o incoherentes.
func (c *Catalog) Validate() error {
	if c == nil || len(c.Traits) == 0 || len(c.Haplotypes) == 0 {
		return ErrEmptyCatalog
	}
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(c.Traits))
	for _, t := range c.Traits {
		key := NormalizeKey(t.Key)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicated trait key %q", ErrInvalidCatalog, key)
		}
		seen[key] = struct{}{}
		if (t.RefMin == nil) != (t.RefMax == nil) {
			return fmt.Errorf("%w: trait %q needs both ref_min and ref_max", ErrInvalidCatalog, key)
		}
	}

	if _, ok := c.Haplotypes[strings.ToUpper(c.DefaultBreed)]; !ok {
		return fmt.Errorf("%w: default breed %q has no haplotype entry", ErrInvalidCatalog, c.DefaultBreed)
	}

	if err := validateGrades(c.Scoring.Grades); err != nil {
		return err
	}
	return nil
}

// validateGrades exige que la tabla particione [0,100] sin huecos ni solapamientos.
func validateGrades(grades []GradeBand) error {
	bands := append([]GradeBand(nil), grades...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min > bands[j].Min })
	if bands[0].Max != 100 {
		return fmt.Errorf("%w: grade table must end at 100", ErrInvalidCatalog)
	}
	if bands[len(bands)-1].Min != 0 {
		return fmt.Errorf("%w: grade table must start at 0", ErrInvalidCatalog)
	}
	letters := make(map[string]struct{}, len(bands))
	for i, b := range bands {
		if _, dup := letters[b.Letter]; dup {
			return fmt.Errorf("%w: duplicated grade %q", ErrInvalidCatalog, b.Letter)
		}
		letters[b.Letter] = struct{}{}
		if i > 0 && bands[i-1].Min != b.Max {
			return fmt.Errorf("%w: grade %q does not meet %q", ErrInvalidCatalog, b.Letter, bands[i-1].Letter)
		}
	}
	return nil
}

// NormalizeKey lleva una clave a la forma canónica: minúsculas, guiones bajos.
func NormalizeKey(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	return k
}
