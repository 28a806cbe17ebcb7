package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gigly/gigly-backend/internal/gigs"
	"github.com/gigly/gigly-backend/internal/users"
	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if token != "good-token" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{TokenIdentifier: "https://auth.test|alice", Nickname: "alice"}, nil
}

type stubGigs struct {
	gigs.Service
	identity *auth.Identity
}

func (s *stubGigs) List(ctx context.Context, query gigs.GigQuery, identity *auth.Identity) ([]gigs.GigView, error) {
	s.identity = identity
	return []gigs.GigView{}, nil
}

func (s *stubGigs) SellerDashboard(ctx context.Context, identity *auth.Identity) ([]gigs.DashboardGig, error) {
	return []gigs.DashboardGig{}, nil
}

type stubUsers struct {
	users.Service
	created int
}

func (s *stubUsers) CreateStripe(ctx context.Context, identity *auth.Identity) (users.OnboardingLinkDTO, error) {
	s.created++
	url := "https://connect.stripe.test/" + uuid.NewString()
	return users.OnboardingLinkDTO{URL: &url}, nil
}

func (s *stubUsers) GetCurrentUser(ctx context.Context, identity *auth.Identity) (*users.UserDTO, error) {
	if identity == nil {
		return nil, nil
	}
	return nil, errors.New("unexpected identity")
}

type harness struct {
	handler http.Handler
	gigs    *stubGigs
	users   *stubUsers
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	cfg := &config.Config{
		App:       config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{OnboardingWindow: time.Minute, OnboardingLimit: 2},
	}
	reg := prometheus.NewRegistry()
	h := &harness{gigs: &stubGigs{}, users: &stubUsers{}}
	h.handler = NewRouter(
		cfg,
		nil,
		stubPinger{},
		redis.NewFromClient(raw),
		reg,
		metrics.NewHTTPMetrics(reg),
		stubVerifier{},
		h.gigs,
		h.users,
		nil,
		nil,
		nil,
		nil,
	)
	return h
}

func (h *harness) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected live 200 got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsRouteExposesHTTPCounters(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/health/live", "")

	rec := h.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected http_requests_total in metrics output")
	}
}

func TestGigListingIdentityIsOptional(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(http.MethodGet, "/api/v1/gigs", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous listing 200 got %d", rec.Code)
	}
	if h.gigs.identity != nil {
		t.Fatalf("expected anonymous identity")
	}

	if rec := h.do(http.MethodGet, "/api/v1/gigs", "good-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected signed-in listing 200 got %d", rec.Code)
	}
	if h.gigs.identity == nil || h.gigs.identity.Nickname != "alice" {
		t.Fatalf("expected identity to reach the service")
	}

	if rec := h.do(http.MethodGet, "/api/v1/gigs", "bad-token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected invalid token to be rejected, got %d", rec.Code)
	}
}

func TestDashboardRequiresIdentity(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(http.MethodGet, "/api/v1/gigs/dashboard", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/api/v1/gigs/dashboard", "good-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestUsersMeAnonymous(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/users/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":null}` {
		t.Fatalf("expected null user, got %s", rec.Body.String())
	}
}

func TestStripeOnboardingIsRateLimited(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 2; i++ {
		if rec := h.do(http.MethodPost, "/api/v1/users/stripe", "good-token"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, rec.Code)
		}
	}
	rec := h.do(http.MethodPost, "/api/v1/users/stripe", "good-token")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if h.users.created != 2 {
		t.Fatalf("expected 2 onboarding calls, got %d", h.users.created)
	}
}

func TestFavoritesWithoutServiceFailClosed(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/gigs/"+uuid.NewString()+"/favorite", "good-token")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
