package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"genefy/internal/domain"
)

const (
	defaultMatingPerPage = 20
	maxMatingPerPage     = 100
)

// MatingRepository persiste acasalamientos planificados.
type MatingRepository interface {
	Create(ctx context.Context, plan domain.MatingPlan) error
	Get(ctx context.Context, id string) (domain.MatingPlan, error)
	List(ctx context.Context, q domain.MatingQuery) (domain.MatingPage, error)
	Update(ctx context.Context, id string, upd domain.MatingUpdate) (domain.MatingPlan, error)
}

// PgMatingRepository implementa MatingRepository usando pgxpool.
type PgMatingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMatingRepository(pool *pgxpool.Pool) *PgMatingRepository {
	return &PgMatingRepository{pool: pool}
}

const matingColumns = `id::text, female_id, sire_id, mating_type, score, grade,
	expected_inbreeding, acceptable, result, status, success, notes,
	created_by, created_at, updated_at`

func (r *PgMatingRepository) Create(ctx context.Context, plan domain.MatingPlan) error {
	const query = `
		INSERT INTO mating_plans (
			id, female_id, sire_id, mating_type, score, grade,
			expected_inbreeding, acceptable, result, status, notes,
			created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	`
	result, err := json.Marshal(plan.Result)
	if err != nil {
		return fmt.Errorf("encode mating result: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		plan.ID,
		plan.FemaleID,
		plan.SireID,
		plan.MatingType,
		plan.Score,
		plan.Grade,
		plan.ExpectedInbreeding,
		plan.Acceptable,
		result,
		plan.Status,
		plan.Notes,
		plan.CreatedBy,
		plan.CreatedAt,
	)
	return err
}

func (r *PgMatingRepository) Get(ctx context.Context, id string) (domain.MatingPlan, error) {
	query := `SELECT ` + matingColumns + ` FROM mating_plans WHERE id = $1`
	plan, err := scanMatingPlan(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MatingPlan{}, fmt.Errorf("mating %s: %w", id, ErrNotFound)
	}
	return plan, err
}

// List devuelve una página ordenada por fecha de creación descendente.
func (r *PgMatingRepository) List(ctx context.Context, q domain.MatingQuery) (domain.MatingPage, error) {
	q = normalizeMatingQuery(q)
	where, args := matingFilter(q)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM mating_plans`+where, args...).Scan(&total); err != nil {
		return domain.MatingPage{}, err
	}

	n := len(args)
	query := `SELECT ` + matingColumns + ` FROM mating_plans` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.pool.Query(ctx, query, append(args, q.PerPage, (q.Page-1)*q.PerPage)...)
	if err != nil {
		return domain.MatingPage{}, err
	}
	defer rows.Close()

	page := domain.MatingPage{Total: total, Page: q.Page, PerPage: q.PerPage, Matings: make([]domain.MatingPlan, 0)}
	for rows.Next() {
		plan, err := scanMatingPlan(rows)
		if err != nil {
			return domain.MatingPage{}, err
		}
		page.Matings = append(page.Matings, plan)
	}
	if err := rows.Err(); err != nil {
		return domain.MatingPage{}, err
	}
	return page, nil
}

// Update aplica los campos informados y devuelve el registro actualizado.
func (r *PgMatingRepository) Update(ctx context.Context, id string, upd domain.MatingUpdate) (domain.MatingPlan, error) {
	query := `
		UPDATE mating_plans
		SET status = COALESCE($2, status),
			success = COALESCE($3, success),
			notes = COALESCE($4, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + matingColumns
	plan, err := scanMatingPlan(r.pool.QueryRow(ctx, query, id, upd.Status, upd.Success, upd.Notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MatingPlan{}, fmt.Errorf("mating %s: %w", id, ErrNotFound)
	}
	return plan, err
}

func normalizeMatingQuery(q domain.MatingQuery) domain.MatingQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultMatingPerPage
	}
	if q.PerPage > maxMatingPerPage {
		q.PerPage = maxMatingPerPage
	}
	return q
}

// matingFilter arma el WHERE con placeholders numerados desde $1.
func matingFilter(q domain.MatingQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	add("status", q.Status)
	add("female_id", q.FemaleID)
	add("sire_id", q.SireID)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanMatingPlan(row pgx.Row) (domain.MatingPlan, error) {
	var (
		plan   domain.MatingPlan
		result []byte
	)
	err := row.Scan(
		&plan.ID,
		&plan.FemaleID,
		&plan.SireID,
		&plan.MatingType,
		&plan.Score,
		&plan.Grade,
		&plan.ExpectedInbreeding,
		&plan.Acceptable,
		&result,
		&plan.Status,
		&plan.Success,
		&plan.Notes,
		&plan.CreatedBy,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return domain.MatingPlan{}, err
	}
	if err := json.Unmarshal(result, &plan.Result); err != nil {
		return domain.MatingPlan{}, fmt.Errorf("mating %s: decode result: %w", plan.ID, err)
	}
	return plan, nil
}
