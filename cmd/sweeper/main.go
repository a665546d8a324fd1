package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"kedairuang-be/internal/capacity"
	"kedairuang-be/internal/clock"
	"kedairuang-be/internal/config"
	"kedairuang-be/internal/db"
	"kedairuang-be/internal/logger"
	"kedairuang-be/internal/order"
	"kedairuang-be/internal/sweeper"

	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep pass and exit")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	clk := clock.System()
	ledger := capacity.NewLedger(clk)

	orderRepo := order.NewRepository(database, ledger, clk)
	orderSvc := order.NewService(orderRepo, clk)

	svc := sweeper.NewService(orderRepo, orderSvc, clk, cfg.OrderExpiry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		report, err := svc.Run(ctx)
		if err != nil {
			logger.L().Fatal("sweep failed", zap.Error(err))
		}
		logger.L().Info("sweep done",
			zap.Int("restored_items", report.RestoredItems),
			zap.Int("expired_orders", report.ExpiredOrders),
		)
		return
	}

	sweeper.NewRunner(svc, cfg.SweepInterval).Start(ctx)
}
