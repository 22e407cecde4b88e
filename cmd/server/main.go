package main

import (
	"context"

	"github.com/schoolworks/gradebook/internal/api"
	"github.com/schoolworks/gradebook/internal/infrastructure/memory"
	"github.com/schoolworks/gradebook/internal/infrastructure/seed"
	"github.com/schoolworks/gradebook/internal/pkg/config"
	"github.com/schoolworks/gradebook/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	accounts := memory.NewAccountStore()
	sessions := memory.NewSessionStore()
	grades := memory.NewGradeStore()
	audit := memory.NewAuditStore()
	refs := memory.NewReferenceStore()

	if cfg.SeedDemoData {
		if err := seed.Load(context.Background(), seed.Stores{
			Accounts: accounts,
			Grades:   grades,
			Refs:     refs,
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().Msg("demo data seeded")
	}

	e := api.NewRouter(api.Stores{
		Accounts: accounts,
		Sessions: sessions,
		Grades:   grades,
		Audit:    audit,
		Refs:     refs,
	}, log)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
