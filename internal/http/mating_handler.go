package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"genefy/internal/domain"
	"genefy/internal/metrics"
	"genefy/internal/repository"
	"genefy/internal/service"
)

// MatingHandler mantiene dependencias para los endpoints de acasalamiento.
type MatingHandler struct {
	logger  *zap.Logger
	engine  *service.MatingEngine
	matcher *service.BatchMatcher
	animals repository.AnimalRepository
	matings repository.MatingRepository
	limiter service.BatchRateLimiter
}

// NewMatingHandler crea el handler. limiter puede ser nil (sin límite de lotes).
func NewMatingHandler(
	logger *zap.Logger,
	engine *service.MatingEngine,
	matcher *service.BatchMatcher,
	animals repository.AnimalRepository,
	matings repository.MatingRepository,
	limiter service.BatchRateLimiter,
) *MatingHandler {
	return &MatingHandler{
		logger:  logger,
		engine:  engine,
		matcher: matcher,
		animals: animals,
		matings: matings,
		limiter: limiter,
	}
}

type analyzeRequest struct {
	FemaleID   string            `json:"female_id"`
	SireID     string            `json:"sire_id"`
	Female     *domain.RawAnimal `json:"female"`
	Sire       *domain.RawAnimal `json:"sire"`
	Priorities domain.Priorities `json:"priorities"`
	Save       bool              `json:"save"`
}

// Analyze maneja POST /matings/analyze.
func (h *MatingHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if (req.FemaleID == "" && req.Female == nil) || (req.SireID == "" && req.Sire == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "female and sire are required"})
		return
	}
	if req.Save && (req.FemaleID == "" || req.SireID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "save requires stored animals"})
		return
	}

	ctx := c.Request.Context()
	female, femaleErrs, err := h.resolveAnimal(ctx, req.FemaleID, req.Female, domain.SexFemale)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	sire, sireErrs, err := h.resolveAnimal(ctx, req.SireID, req.Sire, domain.SexSire)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}

	result := h.engine.Recommend(female, sire, req.Priorities)
	result.FieldErrors = append(append(femaleErrs, sireErrs...), result.FieldErrors...)

	resp := gin.H{"result": result}
	if req.Save {
		plan := domain.MatingPlan{
			ID:                 uuid.NewString(),
			FemaleID:           female.ID,
			SireID:             sire.ID,
			MatingType:         domain.MatingTypeManual,
			Score:              result.Compatibility.Score,
			Grade:              result.Compatibility.Grade,
			ExpectedInbreeding: result.Inbreeding.ExpectedInbreeding,
			Acceptable:         result.Acceptable,
			Result:             result,
			Status:             domain.MatingStatusPlanned,
			CreatedBy:          currentUserID(c),
		}
		plan.CreatedAt = time.Now().UTC()
		plan.UpdatedAt = plan.CreatedAt
		if err := h.matings.Create(ctx, plan); err != nil {
			h.logger.Error("save mating plan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save mating"})
			return
		}
		resp["mating_id"] = plan.ID
	}

	c.JSON(http.StatusOK, resp)
}

type batchRequest struct {
	FemaleIDs     []string          `json:"female_ids" binding:"required,min=1"`
	Priorities    domain.Priorities `json:"priorities"`
	MaxInbreeding float64           `json:"max_inbreeding"`
	TopN          int               `json:"top_n"`
	Filters       domain.SireFilter `json:"filters"`
}

// Batch maneja POST /matings/batch.
func (h *MatingHandler) Batch(c *gin.Context) {
	ctx := c.Request.Context()
	if h.limiter != nil && !h.limiter.Allow(ctx, currentUserID(c)) {
		metrics.RecordRateLimited()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.FemaleIDs) > h.matcher.MaxFemales() {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrTooManyFemales.Error()})
		return
	}

	females, err := h.animals.ListFemales(ctx, req.FemaleIDs)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	sires, err := h.animals.ListAvailableSires(ctx, req.Filters)
	if err != nil {
		h.logger.Error("list sires failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sires"})
		return
	}

	result, err := h.matcher.MatchBatch(ctx, females, sires, service.RankOptions{
		Priorities:    req.Priorities,
		MaxInbreeding: req.MaxInbreeding,
		TopN:          req.TopN,
		Filter:        req.Filters,
	})
	switch {
	case errors.Is(err, service.ErrTooManyFemales):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrNoSires):
		c.JSON(http.StatusNotFound, gin.H{"error": "no sires match the filters"})
		return
	case err != nil:
		h.logger.Error("batch matching failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not run batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// List maneja GET /matings con filtros status, female_id, sire_id y paginación.
func (h *MatingHandler) List(c *gin.Context) {
	q := domain.MatingQuery{
		Status:   c.Query("status"),
		FemaleID: c.Query("female_id"),
		SireID:   c.Query("sire_id"),
	}
	var err error
	if q.Page, err = queryInt(c, "page"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	if q.PerPage, err = queryInt(c, "per_page"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid per_page"})
		return
	}

	page, err := h.matings.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("list matings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list matings"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get maneja GET /matings/:id.
func (h *MatingHandler) Get(c *gin.Context) {
	id, ok := matingID(c)
	if !ok {
		return
	}
	plan, err := h.matings.Get(c.Request.Context(), id)
	if err != nil {
		h.writeMatingError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Update maneja PUT /matings/:id (status, success, notes).
func (h *MatingHandler) Update(c *gin.Context) {
	id, ok := matingID(c)
	if !ok {
		return
	}
	var req domain.MatingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mating update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	plan, err := h.matings.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeMatingError(c, err)
		return
	}
	h.logger.Info("mating updated",
		zap.String("mating_id", id),
		zap.String("status", plan.Status),
		zap.String("user_id", currentUserID(c)),
	)
	c.JSON(http.StatusOK, plan)
}

func matingID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mating not found"})
		return "", false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *MatingHandler) writeMatingError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "mating not found"})
		return
	}
	h.logger.Error("mating lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load mating"})
}

// resolveAnimal carga por id o construye el snapshot a partir del registro inline.
func (h *MatingHandler) resolveAnimal(ctx context.Context, id string, inline *domain.RawAnimal, sex domain.Sex) (domain.AnimalTraitSnapshot, []domain.FieldError, error) {
	if inline != nil {
		raw := *inline
		raw.Sex = sex
		if strings.TrimSpace(raw.ID) == "" {
			raw.ID = string(sex)
		}
		snap, errs := h.engine.SnapshotBuilder().Build(raw)
		return snap, errs, nil
	}
	var (
		snap domain.AnimalTraitSnapshot
		err  error
	)
	if sex == domain.SexFemale {
		snap, err = h.animals.GetFemale(ctx, id)
	} else {
		snap, err = h.animals.GetSire(ctx, id)
	}
	return snap, nil, err
}

func (h *MatingHandler) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	h.logger.Error("load animal failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load animal"})
}

func currentUserID(c *gin.Context) string {
	if claims, ok := GetAuthClaims(c); ok {
		return claims.UserID
	}
	return "anonymous"
}
