package httpx

import (
	"net/http"
	"time"

	"kedairuang-be/internal/catalog"
	"kedairuang-be/internal/logger"
	appmw "kedairuang-be/internal/middleware"
	"kedairuang-be/internal/order"
	"kedairuang-be/internal/payment"
	"kedairuang-be/internal/payment/webhook"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Orders    order.Service
	Catalog   catalog.Service
	Payments  payment.Service
	JWTSecret []byte
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.AccessLogMiddleware)
	r.Use(appmw.RateLimitMiddleware)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Method(http.MethodPost, "/webhook/payment", webhook.NewHandler(deps.Payments))

	ordersHandler := NewOrdersHandler(deps.Orders)
	catalogHandler := NewCatalogHandler(deps.Catalog)
	ordersHandler.Register(r)
	catalogHandler.RegisterPublic(r)

	operatorHandler := NewOperatorHandler(deps.Orders)
	r.Group(func(op chi.Router) {
		op.Use(appmw.RequireOperator(deps.JWTSecret))
		operatorHandler.Register(op)
		catalogHandler.RegisterOperator(op)
	})

	return r
}
