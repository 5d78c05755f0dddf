package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axcshop/axcshop-backend/api/controllers"
	ordercontrollers "github.com/axcshop/axcshop-backend/api/controllers/orders"
	webhookcontrollers "github.com/axcshop/axcshop-backend/api/controllers/webhooks"
	"github.com/axcshop/axcshop-backend/api/middleware"
	"github.com/axcshop/axcshop-backend/internal/carrier"
	checkoutsvc "github.com/axcshop/axcshop-backend/internal/checkout"
	"github.com/axcshop/axcshop-backend/internal/ledger"
	"github.com/axcshop/axcshop-backend/internal/orders"
	"github.com/axcshop/axcshop-backend/internal/payments"
	"github.com/axcshop/axcshop-backend/pkg/config"
	"github.com/axcshop/axcshop-backend/pkg/db"
	"github.com/axcshop/axcshop-backend/pkg/logger"
	"github.com/axcshop/axcshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	ledgerService ledger.Service,
	carrierProcessor *carrier.Processor,
	carrierAuth *carrier.Authenticator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/carrier", webhookcontrollers.CarrierWebhook(carrierProcessor, carrierAuth, cfg.Carrier, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(checkoutService, logg))
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
		})
		r.Post("/payments/verify", controllers.VerifyPayment(paymentsService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Patch("/orders/{orderId}/status", controllers.AdminTransitionOrder(ordersService, logg))
		r.Get("/ledger", controllers.AdminLedgerList(ledgerService, logg))
	})

	return r
}
