package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"genefy/internal/domain"
	"genefy/internal/metrics"
)

var (
	ErrTooManyFemales = errors.New("too many females in batch")
	ErrNoSires        = errors.New("no sires available for matching")
)

const (
	defaultTopN          = 5
	defaultMaxInbreeding = 8.0
	defaultWorkers       = 8
	defaultMaxFemales    = 100
)

// RankOptions parametriza un ranking. Valores cero toman los defaults.
type RankOptions struct {
	Priorities    domain.Priorities `json:"priorities"`
	MaxInbreeding float64           `json:"max_inbreeding"`
	TopN          int               `json:"top_n"`
	Filter        domain.SireFilter `json:"filters"`
}

// RankedSire es un toro recomendado para una hembra.
type RankedSire struct {
	Rank     int                  `json:"rank"`
	SireID   string               `json:"sire_id"`
	SireCode string               `json:"sire_code,omitempty"`
	SireName string               `json:"sire_name,omitempty"`
	Result   domain.PairingResult `json:"result"`
}

// FemaleRanking agrupa los mejores toros de una hembra.
type FemaleRanking struct {
	FemaleID        string       `json:"female_id"`
	FemaleName      string       `json:"female_name,omitempty"`
	Recommendations []RankedSire `json:"recommendations"`
}

type BatchSummary struct {
	TotalFemales         int     `json:"total_females"`
	TotalRecommendations int     `json:"total_recommendations"`
	AverageScore         float64 `json:"average_score"`
	AverageInbreeding    float64 `json:"average_inbreeding"`
	UniqueSires          int     `json:"unique_sires"`
}

type BatchResult struct {
	Matches []FemaleRanking `json:"matches"`
	Summary BatchSummary    `json:"summary"`
}

// BatchMatcher evalúa hembras contra un catálogo de toros en paralelo.
type BatchMatcher struct {
	engine     *MatingEngine
	workers    int
	maxFemales int
	logger     *zap.Logger
}

func NewBatchMatcher(engine *MatingEngine, workers, maxFemales int, logger *zap.Logger) *BatchMatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if maxFemales <= 0 {
		maxFemales = defaultMaxFemales
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchMatcher{engine: engine, workers: workers, maxFemales: maxFemales, logger: logger}
}

// MaxFemales devuelve el tope configurado de hembras por lote.
func (m *BatchMatcher) MaxFemales() int { return m.maxFemales }

// RankSires ordena los toros para una hembra: descarta consanguinidad sobre el máximo
// y pares bloqueados, ordena por score desc (empate: ID del toro) y corta en TopN.
func (m *BatchMatcher) RankSires(ctx context.Context, female domain.AnimalTraitSnapshot, sires []domain.AnimalTraitSnapshot, opts RankOptions) ([]RankedSire, error) {
	start := time.Now()
	candidates := m.FilterSires(sires, opts.Filter)
	if len(candidates) == 0 {
		return nil, ErrNoSires
	}
	ranked, err := m.rank(ctx, female, candidates, normalizeOptions(opts), m.workers)
	if err != nil {
		return nil, err
	}
	metrics.RecordBatch("rank", time.Since(start), len(ranked))
	return ranked, nil
}

// MatchBatch ejecuta el ranking para cada hembra y resume el lote.
func (m *BatchMatcher) MatchBatch(ctx context.Context, females, sires []domain.AnimalTraitSnapshot, opts RankOptions) (BatchResult, error) {
	if len(females) > m.maxFemales {
		return BatchResult{}, fmt.Errorf("%w: %d > %d", ErrTooManyFemales, len(females), m.maxFemales)
	}
	start := time.Now()
	candidates := m.FilterSires(sires, opts.Filter)
	if len(candidates) == 0 {
		return BatchResult{}, ErrNoSires
	}
	opts = normalizeOptions(opts)

	matches := make([]FemaleRanking, len(females))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, female := range females {
		g.Go(func() error {
			ranked, err := m.rank(gctx, female, candidates, opts, 1)
			if err != nil {
				return err
			}
			matches[i] = FemaleRanking{
				FemaleID:        female.ID,
				FemaleName:      female.Name,
				Recommendations: ranked,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Matches: matches, Summary: summarize(matches)}
	metrics.RecordBatch("batch", time.Since(start), result.Summary.TotalRecommendations)
	m.logger.Info("batch matching finished",
		zap.Int("females", len(females)),
		zap.Int("sires", len(candidates)),
		zap.Int("recommendations", result.Summary.TotalRecommendations),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (m *BatchMatcher) rank(ctx context.Context, female domain.AnimalTraitSnapshot, sires []domain.AnimalTraitSnapshot, opts RankOptions, workers int) ([]RankedSire, error) {
	results := make([]*domain.PairingResult, len(sires))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sire := range sires {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := m.engine.Recommend(female, sire, opts.Priorities)
			if r.Compatibility.Blocked || r.Inbreeding.ExpectedInbreeding > opts.MaxInbreeding {
				return nil
			}
			results[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]RankedSire, 0, len(sires))
	for i, r := range results {
		if r == nil {
			continue
		}
		ranked = append(ranked, RankedSire{
			SireID:   sires[i].ID,
			SireCode: sires[i].Code,
			SireName: sires[i].Name,
			Result:   *r,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Result.Compatibility.Score, ranked[j].Result.Compatibility.Score
		if si != sj {
			return si > sj
		}
		return ranked[i].SireID < ranked[j].SireID
	})
	if len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// FilterSires aplica los filtros del catálogo de toros. Un valor ausente no pasa un filtro mínimo.
func (m *BatchMatcher) FilterSires(sires []domain.AnimalTraitSnapshot, f domain.SireFilter) []domain.AnimalTraitSnapshot {
	out := make([]domain.AnimalTraitSnapshot, 0, len(sires))
	for _, s := range sires {
		if m.sireMatches(s, f) {
			out = append(out, s)
		}
	}
	return out
}

func (m *BatchMatcher) sireMatches(s domain.AnimalTraitSnapshot, f domain.SireFilter) bool {
	e := m.engine
	minimums := []struct {
		key string
		min *float64
	}{
		{"milk", f.MinMilk},
		{"net_merit", f.MinNetMerit},
		{"productive_life", f.MinProductiveLife},
	}
	for _, c := range minimums {
		if c.min == nil {
			continue
		}
		v, ok, _ := e.numericValue(s, c.key)
		if !ok || v < *c.min {
			return false
		}
	}
	if f.BetaCasein != "" && !strings.EqualFold(strings.TrimSpace(e.textValue(s, "beta_casein")), strings.TrimSpace(f.BetaCasein)) {
		return false
	}
	if f.MaxGFI != nil && (s.FutureInbreeding == nil || *s.FutureInbreeding > *f.MaxGFI) {
		return false
	}
	if f.Breed != "" && e.haplotypes.BreedCode(s.Breed) != e.haplotypes.BreedCode(f.Breed) {
		return false
	}
	return true
}

func normalizeOptions(opts RankOptions) RankOptions {
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.MaxInbreeding <= 0 {
		opts.MaxInbreeding = defaultMaxInbreeding
	}
	return opts
}

func summarize(matches []FemaleRanking) BatchSummary {
	s := BatchSummary{TotalFemales: len(matches)}
	sires := make(map[string]struct{})
	var scoreSum, inbSum float64
	for _, fr := range matches {
		for _, r := range fr.Recommendations {
			s.TotalRecommendations++
			scoreSum += r.Result.Compatibility.Score
			inbSum += r.Result.Inbreeding.ExpectedInbreeding
			sires[r.SireID] = struct{}{}
		}
	}
	if s.TotalRecommendations > 0 {
		s.AverageScore = scoreSum / float64(s.TotalRecommendations)
		s.AverageInbreeding = inbSum / float64(s.TotalRecommendations)
	}
	s.UniqueSires = len(sires)
	return s
}
