package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/blogkeeper/internal/admincli"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	if cfg.UsesMemoryStore() {
		log.Fatalf("admin bootstrap needs a database DSN (-d)")
	}

	rm, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer rm.Close()

	if err := rm.RunMigrations(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	hasher, err := auth.NewBcryptHasher(cfg.PasswordHashCost)
	if err != nil {
		log.Fatalf("%v", err)
	}

	accounts := services.NewAccountService(rm, hasher, nil, cfg.StoreTimeout, logger)
	if _, err := admincli.NewBootstrapper(accounts, os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
