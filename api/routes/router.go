package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/sagaflow-backend/api/controllers"
	sagacontrollers "github.com/angelmondragon/sagaflow-backend/api/controllers/saga"
	"github.com/angelmondragon/sagaflow-backend/api/middleware"
	product "github.com/angelmondragon/sagaflow-backend/internal/products"
	sagasvc "github.com/angelmondragon/sagaflow-backend/internal/saga"
	"github.com/angelmondragon/sagaflow-backend/pkg/config"
	"github.com/angelmondragon/sagaflow-backend/pkg/db"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox"
	"github.com/angelmondragon/sagaflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sagaService sagasvc.Service,
	outboxRepo *outbox.Repository,
	productCommands product.CommandService,
	productQueries product.QueryService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/saga", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", sagacontrollers.CreateOrder(sagaService, logg))
			r.Get("/", sagacontrollers.List(sagaService, logg))
			r.Get("/{orderId}", sagacontrollers.Detail(sagaService, logg))
		})
		r.Get("/outbox", sagacontrollers.Outbox(outboxRepo, logg))
	})

	r.Route("/api/v1/commands/products", func(r chi.Router) {
		r.Post("/", controllers.CreateProduct(productCommands, logg))
		r.Patch("/{productId}/price", controllers.UpdateProductPrice(productCommands, logg))
		r.Delete("/{productId}", controllers.DeactivateProduct(productCommands, logg))
	})

	r.Route("/api/v1/queries/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productQueries, logg))
		r.Get("/{productId}", controllers.GetProduct(productQueries, logg))
	})

	return r
}
