package main

import (
	"context"
	"flag"

	"dutyfree/internal/config"
	"dutyfree/internal/db"
	"dutyfree/internal/logging"
	"dutyfree/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	admin := flag.String("admin", "", "User id to grant the admin role")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format).Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, *admin); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied")
}
