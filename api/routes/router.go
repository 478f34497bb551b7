package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aresheg/restaurant-storefront/api/controllers"
	"github.com/aresheg/restaurant-storefront/api/middleware"
	"github.com/aresheg/restaurant-storefront/internal/cart"
	"github.com/aresheg/restaurant-storefront/internal/orders"
	"github.com/aresheg/restaurant-storefront/pkg/config"
	"github.com/aresheg/restaurant-storefront/pkg/enums"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/redis"
)

type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Carts       *cart.Store
	Orders      orders.Service
	AdminEditor *orders.AdminEditor
	Tracker     *orders.Tracker
	Redis       *redis.Client
	Registry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyPinger(deps.Redis)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Delete("/", controllers.CartClear(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
			r.Put("/items/{dishId}", controllers.CartSetQuantity(deps.Carts, logg))
			r.Delete("/items/{dishId}", controllers.CartRemoveItem(deps.Carts, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Orders, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/current", controllers.OrderCurrent(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/payment", controllers.ConfirmPayment(deps.Orders, logg))
			r.Post("/{orderId}/track", controllers.TrackStart(deps.Orders, deps.Tracker, logg))
			r.Delete("/{orderId}/track", controllers.TrackStop(deps.Tracker, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminSetOrderStatus(deps.AdminEditor, logg))
			r.Patch("/{orderId}/payment-status", controllers.AdminSetPaymentStatus(deps.AdminEditor, logg))
		})
	})

	return r
}

// typed-nil guards: a nil *redis.Client must become a nil interface so the
// middleware and health check treat the dependency as absent.
func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func readyPinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
