package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"genefy/internal/domain"
)

// SnapshotBuilder convierte la fila plana en el snapshot canónico del motor.
type SnapshotBuilder interface {
	Build(raw domain.RawAnimal) (domain.AnimalTraitSnapshot, []domain.FieldError)
}

// AnimalRepository define el contrato de lectura de hembras y toros.
type AnimalRepository interface {
	GetFemale(ctx context.Context, id string) (domain.AnimalTraitSnapshot, error)
	ListFemales(ctx context.Context, ids []string) ([]domain.AnimalTraitSnapshot, error)
	GetSire(ctx context.Context, id string) (domain.AnimalTraitSnapshot, error)
	ListAvailableSires(ctx context.Context, filter domain.SireFilter) ([]domain.AnimalTraitSnapshot, error)
}

// PgAnimalRepository implementa AnimalRepository usando pgxpool.
type PgAnimalRepository struct {
	pool    *pgxpool.Pool
	builder SnapshotBuilder
	logger  *zap.Logger
}

func NewPgAnimalRepository(pool *pgxpool.Pool, builder SnapshotBuilder, logger *zap.Logger) *PgAnimalRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgAnimalRepository{pool: pool, builder: builder, logger: logger}
}

const animalColumns = `id, code, name, breed, sex, traits`

func (r *PgAnimalRepository) GetFemale(ctx context.Context, id string) (domain.AnimalTraitSnapshot, error) {
	return r.getBySex(ctx, id, domain.SexFemale)
}

func (r *PgAnimalRepository) GetSire(ctx context.Context, id string) (domain.AnimalTraitSnapshot, error) {
	return r.getBySex(ctx, id, domain.SexSire)
}

func (r *PgAnimalRepository) getBySex(ctx context.Context, id string, sex domain.Sex) (domain.AnimalTraitSnapshot, error) {
	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE id = $1 AND sex = $2
	`
	raw, err := scanRawAnimal(r.pool.QueryRow(ctx, query, id, string(sex)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AnimalTraitSnapshot{}, fmt.Errorf("%s %s: %w", sex, id, ErrNotFound)
	}
	if err != nil {
		return domain.AnimalTraitSnapshot{}, err
	}
	return r.build(raw), nil
}

// ListFemales devuelve las hembras en el orden de ids. Un id inexistente es ErrNotFound.
func (r *PgAnimalRepository) ListFemales(ctx context.Context, ids []string) ([]domain.AnimalTraitSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE sex = 'female' AND id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]domain.AnimalTraitSnapshot, len(ids))
	for rows.Next() {
		raw, err := scanRawAnimal(rows)
		if err != nil {
			return nil, err
		}
		byID[raw.ID] = r.build(raw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.AnimalTraitSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("female %s: %w", id, ErrNotFound)
		}
		out = append(out, snap)
	}
	return out, nil
}

// ListAvailableSires filtra por raza en SQL; el resto de filtros los aplica el BatchMatcher
// sobre el snapshot ya normalizado.
func (r *PgAnimalRepository) ListAvailableSires(ctx context.Context, filter domain.SireFilter) ([]domain.AnimalTraitSnapshot, error) {
	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE sex = 'sire' AND available AND ($1 = '' OR upper(breed) = upper($1))
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, filter.Breed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sires []domain.AnimalTraitSnapshot
	for rows.Next() {
		raw, err := scanRawAnimal(rows)
		if err != nil {
			return nil, err
		}
		sires = append(sires, r.build(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sires, nil
}

func (r *PgAnimalRepository) build(raw domain.RawAnimal) domain.AnimalTraitSnapshot {
	snap, fieldErrs := r.builder.Build(raw)
	for _, fe := range fieldErrs {
		r.logger.Warn("malformed stored trait",
			zap.String("animal_id", fe.AnimalID),
			zap.String("field", fe.Field),
			zap.String("value", fe.Value),
		)
	}
	return snap
}

func scanRawAnimal(row pgx.Row) (domain.RawAnimal, error) {
	var (
		raw    domain.RawAnimal
		sex    string
		traits []byte
	)
	if err := row.Scan(&raw.ID, &raw.Code, &raw.Name, &raw.Breed, &sex, &traits); err != nil {
		return domain.RawAnimal{}, err
	}
	raw.Sex = domain.Sex(sex)
	values, err := decodeTraits(traits)
	if err != nil {
		return domain.RawAnimal{}, fmt.Errorf("animal %s: %w", raw.ID, err)
	}
	raw.Values = values
	return raw, nil
}

// decodeTraits preserva los números tal cual vienen en el JSONB.
func decodeTraits(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode traits json: %w", err)
	}
	return values, nil
}
