package main

import (
	"context"
	"flag"
	"os"

	"github.com/yungbote/dbhealth-backend/internal/config"
	"github.com/yungbote/dbhealth-backend/internal/db"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/repos"
	"github.com/yungbote/dbhealth-backend/internal/services"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		refresh    = flag.Bool("refresh", false, "refresh every diagnostic for all registered targets and exit")
		install    = flag.Bool("install", false, "install diagnostic procedures on targets missing them")
	)
	flag.Parse()

	bootLog, err := logger.New(os.Getenv("APP_MODE"))
	if err != nil {
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to load config", "error", err)
	}
	log, err := logger.New(cfg.Mode)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", "mode", cfg.Mode, "error", err)
	}
	defer log.Sync()

	store, err := db.NewSqliteService(cfg.SqlitePath, log)
	if err != nil {
		log.Fatal("Failed to open result store", "path", cfg.SqlitePath, "error", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to migrate result store", "error", err)
	}

	targetRepo := repos.NewDatabaseTargetRepo(store.DB(), log)
	resultRepo := repos.NewResultRepo(store.DB(), log)
	detailRepo := repos.NewDetailRepo(store.DB(), log)
	diagnostics := services.NewDiagnosticService(store.DB(), log, targetRepo, resultRepo, detailRepo, services.MssqlRunnerFactory(log))

	ctx := context.Background()
	registered := make([]*types.DatabaseTarget, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		target, err := diagnostics.RegisterTarget(ctx, &types.DatabaseTarget{
			Name:     t.Name,
			Host:     t.Host,
			Port:     t.Port,
			User:     t.User,
			Password: t.Password,
		})
		if err != nil {
			log.Error("Failed to register target", "name", t.Name, "host", t.Host, "error", err)
			continue
		}
		registered = append(registered, target)
	}
	log.Info("Targets registered", "count", len(registered))

	if *install && cfg.InstallScriptDir != "" {
		for _, target := range registered {
			if target.HasProcedures != nil && *target.HasProcedures {
				continue
			}
			batches, err := diagnostics.InstallDiagnostics(ctx, target.ID, cfg.InstallScriptDir)
			if err != nil {
				log.Error("Failed to install diagnostic procedures", "database_target_id", target.ID, "error", err)
				continue
			}
			log.Info("Diagnostic procedures installed", "database_target_id", target.ID, "batches", batches)
		}
	}

	if *refresh {
		for _, target := range registered {
			if err := diagnostics.RefreshAll(ctx, target.ID); err != nil {
				log.Error("Refresh failed", "database_target_id", target.ID, "error", err)
			}
		}
	}
}
