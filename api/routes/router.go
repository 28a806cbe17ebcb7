package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigly/gigly-backend/api/controllers"
	webhookcontrollers "github.com/gigly/gigly-backend/api/controllers/webhooks"
	"github.com/gigly/gigly-backend/api/middleware"
	"github.com/gigly/gigly-backend/internal/favorites"
	"github.com/gigly/gigly-backend/internal/gigs"
	"github.com/gigly/gigly-backend/internal/users"
	stripewebhook "github.com/gigly/gigly-backend/internal/webhooks/stripe"
	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/db"
	"github.com/gigly/gigly-backend/pkg/logger"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/redis"
	"github.com/gigly/gigly-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	verifier auth.Verifier,
	gigsService gigs.Service,
	usersService users.Service,
	favoritesService favorites.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	onboardingPolicy := middleware.NewRateLimitPolicy(
		"stripe_onboarding",
		cfg.RateLimit.OnboardingWindow,
		cfg.RateLimit.OnboardingLimit,
	)

	requireIdentity := middleware.RequireIdentity(verifier, logg)
	optionalIdentity := middleware.OptionalIdentity(verifier, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(dbP, redisClient)))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	if stripeWebhookService != nil && stripeWebhookGuard != nil {
		r.Route("/api/v1/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
		})
	}

	r.Route("/api/v1/gigs", func(r chi.Router) {
		r.With(optionalIdentity).Get("/", controllers.GigsList(gigsService, logg))
		r.Get("/by-seller/{sellerName}", controllers.GigsBySeller(gigsService, logg))
		r.Get("/with-images/{sellerUsername}", controllers.GigsWithImages(gigsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)
			r.Get("/dashboard", controllers.GigsDashboard(gigsService, logg))
			r.Post("/{gigId}/favorite", controllers.FavoriteAdd(favoritesService, logg))
			r.Delete("/{gigId}/favorite", controllers.FavoriteRemove(favoritesService, logg))
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(optionalIdentity).Get("/me", controllers.UsersMe(usersService, logg))
		r.Get("/by-username", controllers.UsersByUsername(usersService, logg))
		r.Get("/by-username/{username}/languages", controllers.UsersLanguages(usersService, logg))
		r.Get("/by-username/{username}/country", controllers.UsersCountry(usersService, logg))
		r.Get("/{userId}", controllers.UsersGet(usersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)
			r.Post("/store", controllers.UsersStore(usersService, logg))
			r.With(middleware.RateLimit(onboardingPolicy, rateLimiterOrNil(redisClient), logg)).
				Post("/stripe", controllers.UsersCreateStripe(usersService, logg))
			r.Post("/stripe/refresh", controllers.UsersRefreshStripe(usersService, logg))
		})
	})

	return r
}

func readinessDeps(dbP db.Pinger, redisClient *redis.Client) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["db"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	return deps
}

// rateLimiterOrNil keeps a nil *redis.Client from reaching the middleware as
// a non-nil interface.
func rateLimiterOrNil(c *redis.Client) redis.RateLimiter {
	if c == nil {
		return nil
	}
	return c
}
