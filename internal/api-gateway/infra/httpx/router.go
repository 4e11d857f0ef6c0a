package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/httpx/middlewares"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/metrics"
)

type RouterOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	// Metrics is optional; when nil no /metrics route is mounted.
	Metrics *metrics.ServerMetrics
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := opts.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{middlewares.HeaderXRequestID},
		MaxAge:         300,
	}))
	if opts.Metrics != nil {
		r.Use(middlewares.Metrics(opts.Metrics))
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.Health)
	r.Get("/test", handler.Test)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/item/{id}", handler.GetItem)

		r.Post("/cart", handler.CreateCart)
		r.Post("/cart/{cartId}/items", handler.AddCartItem)
		r.Get("/cart/{cartId}", handler.GetCart)

		r.Post("/orders", handler.CreateOrder)
		r.Post("/checkout", handler.Checkout)
	})
	return r
}
