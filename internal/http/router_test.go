package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/repository"
	"art-advisor/internal/service"
)

type recordingSubmitter struct {
	mu       sync.Mutex
	triggers []string
}

func (r *recordingSubmitter) Submit(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, trigger)
}

type fixedLimiter struct {
	allow bool
	keys  []string
}

func (f *fixedLimiter) Allow(_ context.Context, key string) service.TriggerDecision {
	f.keys = append(f.keys, key)
	if !f.allow {
		return service.TriggerDecision{RetryAfter: 90 * time.Second}
	}
	return service.TriggerDecision{Allowed: true, Remaining: 1}
}

type testServer struct {
	router   *gin.Engine
	artworks *repository.MemoryArtworkRepository
	taste    *repository.MemoryTasteRepository
	runner   *recordingSubmitter
	jwt      *service.JWTService
}

func newTestServer(t *testing.T, limiter service.TriggerRateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	artworks := repository.NewMemoryArtworkRepository()
	taste := repository.NewMemoryTasteRepository()
	feedback := service.NewFeedbackService(artworks, taste, zap.NewNop())
	runner := &recordingSubmitter{}
	jwtSvc := service.NewJWTService("secret", time.Hour)

	router := NewRouter(
		zap.NewNop(),
		NewArtworkHandler(zap.NewNop(), feedback, time.UTC),
		NewCurationHandler(zap.NewNop(), runner, limiter),
		jwtSvc,
		[]string{"https://app.example.com"},
	)
	return &testServer{router: router, artworks: artworks, taste: taste, runner: runner, jwt: jwtSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestFeedTodayReturnsOnlyTodaysArtworks(t *testing.T) {
	s := newTestServer(t, nil)
	today := time.Now().UTC()
	_, _ = s.artworks.CreateBatch(context.Background(), []domain.Artwork{
		{Title: "Hoje", ImageURL: "https://img.example.com/1.jpg", Tags: []string{"a", "b", "c"}, DisplayDate: today},
		{Title: "Ontem", ImageURL: "https://img.example.com/2.jpg", DisplayDate: today.AddDate(0, 0, -1)},
	})

	rec := s.do(t, http.MethodGet, "/feed/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Date     string           `json:"date"`
		Artworks []domain.Artwork `json:"artworks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Artworks) != 1 || body.Artworks[0].Title != "Hoje" {
		t.Fatalf("unexpected feed %+v", body.Artworks)
	}
	if body.Date != today.Format("2006-01-02") {
		t.Fatalf("unexpected date %q", body.Date)
	}
}

func TestToggleLikeEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	saved, _ := s.artworks.CreateBatch(context.Background(), []domain.Artwork{
		{Title: "Maré", ImageURL: "https://img.example.com/1.jpg", Tags: []string{"impasto", "ocre", "abstract"}, DisplayDate: time.Now()},
	})
	path := "/artworks/" + saved[0].ID + "/like"

	rec := s.do(t, http.MethodPost, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
		Liked  bool   `json:"liked"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "ok" || !body.Liked {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, path, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Liked {
		t.Fatalf("second toggle should unlike, got %s", rec.Body.String())
	}

	profile := s.do(t, http.MethodGet, "/profile", "")
	var p struct {
		Profile []domain.TasteProfileEntry `json:"profile"`
	}
	_ = json.Unmarshal(profile.Body.Bytes(), &p)
	if len(p.Profile) != 3 || p.Profile[0].Weight != 1 {
		t.Fatalf("expected three tags with weight 1, got %+v", p.Profile)
	}
}

func TestToggleLikeUnknownArtwork(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/artworks/does-not-exist/like", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRunCurationRequiresAdminToken(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/curation/run", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(s.runner.triggers) != 0 {
		t.Fatalf("no run should be submitted without token")
	}
}

func TestRunCurationAccepted(t *testing.T) {
	limiter := &fixedLimiter{allow: true}
	s := newTestServer(t, limiter)
	token, _, _ := s.jwt.IssueAdminToken("ops")

	rec := s.do(t, http.MethodPost, "/curation/run", token)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(s.runner.triggers) != 1 || s.runner.triggers[0] != domain.TriggerManual {
		t.Fatalf("expected one manual run, got %v", s.runner.triggers)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "ops" {
		t.Fatalf("limiter should be keyed by operator, got %v", limiter.keys)
	}
}

func TestRunCurationRateLimited(t *testing.T) {
	s := newTestServer(t, &fixedLimiter{allow: false})
	token, _, _ := s.jwt.IssueAdminToken("ops")

	rec := s.do(t, http.MethodPost, "/curation/run", token)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "90" {
		t.Fatalf("expected Retry-After 90, got %q", rec.Header().Get("Retry-After"))
	}
	if len(s.runner.triggers) != 0 {
		t.Fatalf("rate limited request must not submit a run")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/artworks/abc/like", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight to succeed, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("expected POST in allowed methods, got %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/feed/today", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin on feed response, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/feed/today", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin for unknown origin: %q", got)
	}
}
