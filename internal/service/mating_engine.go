package service

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"genefy/internal/catalog"
	"genefy/internal/domain"
)

// MatingEngine evalúa pares hembra x toro. Es inmutable tras la construcción y
// seguro para uso concurrente: no guarda estado entre evaluaciones.
type MatingEngine struct {
	registry   *catalog.Registry
	haplotypes *catalog.HaplotypeCatalog
	inbreeding catalog.InbreedingConfig
	scoring    catalog.ScoringConfig
	status     catalog.StatusConfig
	version    string
	logger     *zap.Logger
}

// NewMatingEngine valida el catálogo y se niega a iniciar con uno vacío o inválido.
func NewMatingEngine(cat *catalog.Catalog, logger *zap.Logger) (*MatingEngine, error) {
	if cat == nil {
		return nil, catalog.ErrEmptyCatalog
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	registry, err := catalog.NewRegistry(cat.Traits)
	if err != nil {
		return nil, fmt.Errorf("build trait registry: %w", err)
	}
	haps, err := catalog.NewHaplotypeCatalog(cat.Haplotypes, cat.BreedAliases, cat.DefaultBreed)
	if err != nil {
		return nil, fmt.Errorf("build haplotype catalog: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatingEngine{
		registry:   registry,
		haplotypes: haps,
		inbreeding: cat.Inbreeding,
		scoring:    cat.Scoring,
		status:     cat.Status,
		version:    cat.Version,
		logger:     logger,
	}, nil
}

// Registry expone el registro de rasgos (solo lectura).
func (e *MatingEngine) Registry() *catalog.Registry { return e.registry }

// Haplotypes expone el catálogo de haplotipos (solo lectura).
func (e *MatingEngine) Haplotypes() *catalog.HaplotypeCatalog { return e.haplotypes }

// SnapshotBuilder devuelve un builder que comparte el catálogo del motor.
func (e *MatingEngine) SnapshotBuilder() *SnapshotBuilder {
	return NewSnapshotBuilder(e.registry, e.haplotypes)
}

// CatalogVersion identifica la versión del catálogo cargado.
func (e *MatingEngine) CatalogVersion() string { return e.version }

// numericValue lee un rasgo numérico de un animal. Los textos que no parsean se
// reportan como error de campo y se tratan como ausentes.
func (e *MatingEngine) numericValue(animal domain.AnimalTraitSnapshot, key string) (float64, bool, *domain.FieldError) {
	meta := e.registry.Resolve(key)
	if meta.Kind != domain.KindNumeric {
		return 0, false, nil
	}
	v, ok := animal.Value(meta.Category, meta.Key)
	if !ok {
		return 0, false, nil
	}
	f, ok, malformed := v.Float()
	if malformed {
		value := v.Text
		if v.Number != nil {
			value = strconv.FormatFloat(*v.Number, 'g', -1, 64)
		}
		return 0, false, &domain.FieldError{
			AnimalID: animal.ID,
			Field:    meta.Key,
			Value:    value,
			Reason:   "non-numeric value for numeric trait",
		}
	}
	return f, ok, nil
}

// textValue lee un rasgo categórico (genotipos).
func (e *MatingEngine) textValue(animal domain.AnimalTraitSnapshot, key string) string {
	meta := e.registry.Resolve(key)
	v, ok := animal.Value(meta.Category, meta.Key)
	if !ok {
		return ""
	}
	return v.Text
}
