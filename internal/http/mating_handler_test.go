package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"genefy/internal/catalog"
	"genefy/internal/domain"
	"genefy/internal/repository"
	"genefy/internal/service"
)

type mockAnimalRepo struct {
	females map[string]domain.AnimalTraitSnapshot
	sires   map[string]domain.AnimalTraitSnapshot
	order   []string
}

func newMockAnimalRepo() *mockAnimalRepo {
	return &mockAnimalRepo{
		females: make(map[string]domain.AnimalTraitSnapshot),
		sires:   make(map[string]domain.AnimalTraitSnapshot),
	}
}

func (m *mockAnimalRepo) GetFemale(_ context.Context, id string) (domain.AnimalTraitSnapshot, error) {
	f, ok := m.females[id]
	if !ok {
		return domain.AnimalTraitSnapshot{}, fmt.Errorf("female %s: %w", id, repository.ErrNotFound)
	}
	return f, nil
}

func (m *mockAnimalRepo) ListFemales(ctx context.Context, ids []string) ([]domain.AnimalTraitSnapshot, error) {
	out := make([]domain.AnimalTraitSnapshot, 0, len(ids))
	for _, id := range ids {
		f, err := m.GetFemale(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *mockAnimalRepo) GetSire(_ context.Context, id string) (domain.AnimalTraitSnapshot, error) {
	s, ok := m.sires[id]
	if !ok {
		return domain.AnimalTraitSnapshot{}, fmt.Errorf("sire %s: %w", id, repository.ErrNotFound)
	}
	return s, nil
}

func (m *mockAnimalRepo) ListAvailableSires(_ context.Context, _ domain.SireFilter) ([]domain.AnimalTraitSnapshot, error) {
	out := make([]domain.AnimalTraitSnapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sires[id])
	}
	return out, nil
}

func (m *mockAnimalRepo) addSire(s domain.AnimalTraitSnapshot) {
	m.sires[s.ID] = s
	m.order = append(m.order, s.ID)
}

type mockMatingRepo struct {
	plans     []domain.MatingPlan
	err       error
	lastQuery domain.MatingQuery
}

func (m *mockMatingRepo) Create(_ context.Context, plan domain.MatingPlan) error {
	if m.err != nil {
		return m.err
	}
	m.plans = append(m.plans, plan)
	return nil
}

func (m *mockMatingRepo) Get(_ context.Context, id string) (domain.MatingPlan, error) {
	for _, p := range m.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.MatingPlan{}, fmt.Errorf("mating %s: %w", id, repository.ErrNotFound)
}

func (m *mockMatingRepo) List(_ context.Context, q domain.MatingQuery) (domain.MatingPage, error) {
	if m.err != nil {
		return domain.MatingPage{}, m.err
	}
	m.lastQuery = q
	page := domain.MatingPage{Page: q.Page, PerPage: q.PerPage, Matings: make([]domain.MatingPlan, 0)}
	for _, p := range m.plans {
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		page.Matings = append(page.Matings, p)
	}
	page.Total = len(page.Matings)
	return page, nil
}

func (m *mockMatingRepo) Update(_ context.Context, id string, upd domain.MatingUpdate) (domain.MatingPlan, error) {
	for i, p := range m.plans {
		if p.ID != id {
			continue
		}
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.Success != nil {
			p.Success = upd.Success
		}
		if upd.Notes != nil {
			p.Notes = *upd.Notes
		}
		m.plans[i] = p
		return p, nil
	}
	return domain.MatingPlan{}, fmt.Errorf("mating %s: %w", id, repository.ErrNotFound)
}

type stubLimiter struct {
	allow bool
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) bool {
	s.keys = append(s.keys, key)
	return s.allow
}

type testServer struct {
	router  *gin.Engine
	animals *mockAnimalRepo
	matings *mockMatingRepo
	jwt     *service.JWTService
}

func newTestServer(t *testing.T, limiter service.BatchRateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := service.NewMatingEngine(catalog.Default(), zap.NewNop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	animals := newMockAnimalRepo()
	matings := &mockMatingRepo{}
	jwtSvc := service.NewJWTService("secret", 15*time.Minute)

	matingH := NewMatingHandler(zap.NewNop(), engine, service.NewBatchMatcher(engine, 2, 3, zap.NewNop()), animals, matings, limiter)
	router := NewRouter(zap.NewNop(), jwtSvc, NewCatalogHandler(engine), matingH)

	nm := func(v float64) map[string]map[string]domain.TraitValue {
		return map[string]map[string]domain.TraitValue{domain.TraitCategoryEconomic: {"net_merit": domain.Num(v)}}
	}
	gINB := 4.0
	animals.females["F1"] = domain.AnimalTraitSnapshot{ID: "F1", Breed: "HO", Sex: domain.SexFemale, Traits: nm(500), GenomicInbreeding: &gINB}
	for i, v := range []float64{900, 300} {
		gfi := 4.0
		animals.addSire(domain.AnimalTraitSnapshot{ID: fmt.Sprintf("S%d", i+1), Breed: "HO", Sex: domain.SexSire, Traits: nm(v), FutureInbreeding: &gfi})
	}

	return &testServer{router: router, animals: animals, matings: matings, jwt: jwtSvc}
}

func (s *testServer) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		token, err := s.jwt.IssueAccessToken("u1", "farm-1", "breeder")
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeByIDsAndSave(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/matings/analyze", gin.H{"female_id": "F1", "sire_id": "S1", "save": true}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result   domain.PairingResult `json:"result"`
		MatingID string               `json:"mating_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.FemaleID != "F1" || resp.Result.SireID != "S1" {
		t.Fatalf("unexpected result ids %+v", resp.Result)
	}
	if resp.MatingID == "" || len(srv.matings.plans) != 1 {
		t.Fatalf("expected saved plan, got id=%q plans=%d", resp.MatingID, len(srv.matings.plans))
	}
	plan := srv.matings.plans[0]
	if plan.CreatedBy != "u1" || plan.Status != domain.MatingStatusPlanned || plan.Score != resp.Result.Compatibility.Score {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestAnalyzeInlineSnapshots(t *testing.T) {
	srv := newTestServer(t, nil)

	body := gin.H{
		"female": gin.H{"id": "cow-9", "breed": "Holstein", "values": gin.H{"hh1": "C", "NM$": "1,000", "tpi": "??"}},
		"sire":   gin.H{"id": "bull-9", "values": gin.H{"HH1": "carrier", "net_merit": 600}},
	}
	rec := srv.do(t, http.MethodPost, "/matings/analyze", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result domain.PairingResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.Acceptable || !resp.Result.Compatibility.Blocked {
		t.Fatalf("expected carrier x carrier to be rejected, got %+v", resp.Result.Compatibility)
	}
	if len(resp.Result.FieldErrors) != 1 || resp.Result.FieldErrors[0].Field != "tpi" {
		t.Fatalf("expected tpi field error, got %+v", resp.Result.FieldErrors)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	if rec := srv.do(t, http.MethodPost, "/matings/analyze", gin.H{"female_id": "F1"}, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without sire, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/matings/analyze", gin.H{"female_id": "F1", "sire_id": "NOPE"}, true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sire, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/matings/analyze", gin.H{"female_id": "F1", "sire_id": "S1"}, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBatchEndpoint(t *testing.T) {
	limiter := &stubLimiter{allow: true}
	srv := newTestServer(t, limiter)

	rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{"female_ids": []string{"F1"}, "top_n": 1}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp service.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matches) != 1 || len(resp.Matches[0].Recommendations) != 1 {
		t.Fatalf("unexpected matches %+v", resp.Matches)
	}
	if resp.Matches[0].Recommendations[0].SireID != "S1" {
		t.Fatalf("expected best sire S1, got %s", resp.Matches[0].Recommendations[0].SireID)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "u1" {
		t.Fatalf("expected limiter keyed by user, got %v", limiter.keys)
	}
}

func TestBatchEndpointErrors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		srv := newTestServer(t, &stubLimiter{allow: false})
		rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{"female_ids": []string{"F1"}}, true)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	})

	t.Run("too many females", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{"female_ids": []string{"a", "b", "c", "d"}}, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{"female_ids": []string{}}, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown female", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{"female_ids": []string{"F404"}}, true)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("no sires after filters", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := srv.do(t, http.MethodPost, "/matings/batch", gin.H{
			"female_ids": []string{"F1"},
			"filters":    gin.H{"beta_casein": "A2A2"},
		}, true)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestStoredMatings(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/matings/analyze", gin.H{"female_id": "F1", "sire_id": "S1", "save": true}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	id := srv.matings.plans[0].ID

	rec = srv.do(t, http.MethodGet, "/matings/"+id, nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.MatingPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode mating: %v", err)
	}
	if got.ID != id || got.FemaleID != "F1" || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected mating %+v", got)
	}

	rec = srv.do(t, http.MethodPut, "/matings/"+id, gin.H{"status": "completed", "success": true, "notes": "calf born"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}
	plan := srv.matings.plans[0]
	if plan.Status != domain.MatingStatusCompleted || plan.Success == nil || !*plan.Success || plan.Notes != "calf born" {
		t.Fatalf("unexpected updated plan %+v", plan)
	}

	rec = srv.do(t, http.MethodGet, "/matings?status=completed&page=2&per_page=5", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.MatingPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || len(page.Matings) != 1 {
		t.Fatalf("expected one completed mating, got %+v", page)
	}
	if q := srv.matings.lastQuery; q.Status != "completed" || q.Page != 2 || q.PerPage != 5 {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestStoredMatingErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	missing := "7d0b5a3e-4a3c-4c51-9a55-1c2b8f1e0a11"

	if rec := srv.do(t, http.MethodGet, "/matings/"+missing, nil, true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown mating, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/matings/not-a-uuid", nil, true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPut, "/matings/"+missing, gin.H{"status": "exploded"}, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPut, "/matings/"+missing, gin.H{}, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPut, "/matings/"+missing, gin.H{"status": "cancelled"}, true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 updating unknown mating, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/matings?page=x", nil, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid page, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/matings", nil, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/catalog/haplotypes/jersey", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var haps struct {
		Breed      string   `json:"breed"`
		Haplotypes []string `json:"haplotypes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &haps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if haps.Breed != "JE" || len(haps.Haplotypes) != 2 {
		t.Fatalf("unexpected jersey haplotypes %+v", haps)
	}

	rec = srv.do(t, http.MethodGet, "/catalog/traits", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var traits struct {
		Traits []domain.TraitMetadata `json:"traits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &traits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(traits.Traits) == 0 {
		t.Fatalf("expected traits in catalog")
	}

	if rec := srv.do(t, http.MethodGet, "/health", nil, false); rec.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rec.Code)
	}
}
