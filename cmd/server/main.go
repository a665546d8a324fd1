package main

import (
	"net/http"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/catalog"
	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/config"
	"kedairuang-be/internal/db"
	"kedairuang-be/internal/httpx"
	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/order"
	"kedairuang-be/internal/payment"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	clk := clock.System()
	ledger := capacity.NewLedger(clk)

	orderRepo := order.NewRepository(database, ledger, clk)
	orderSvc := order.NewService(orderRepo, clk)

	catalogRepo := catalog.NewRepository(database, clk)
	catalogSvc := catalog.NewService(catalogRepo)

	verifier := payment.NewVerifier(cfg.PaymentServerKey)
	paymentSvc := payment.NewService(verifier, orderSvc)

	router := httpx.NewRouter(httpx.Deps{
		Orders:    orderSvc,
		Catalog:   catalogSvc,
		Payments:  paymentSvc,
		JWTSecret: []byte(cfg.JWTSecret),
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
