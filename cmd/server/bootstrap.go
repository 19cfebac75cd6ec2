package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/api"
	"github.com/studyhub/studyhub/internal/app"
	"github.com/studyhub/studyhub/internal/app/maintenance"
	iauth "github.com/studyhub/studyhub/internal/auth"
	"github.com/studyhub/studyhub/internal/database"
	"github.com/studyhub/studyhub/internal/services"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Auditor *maintenance.Auditor
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, background jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return nil, errors.New("auth.jwt.secret must be configured")
	}

	stack.DB, err = initialiseDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		integrity, err := services.NewIntegrityService(stack.DB, nil)
		if err != nil {
			return nil, fmt.Errorf("initialise integrity service: %w", err)
		}
		stack.Auditor = maintenance.NewAuditor(stack.DB, integrity,
			maintenance.WithIntegritySchedule(cfg.Maintenance.IntegrityAudit),
			maintenance.WithProgressSchedule(cfg.Maintenance.ProgressCleanup),
			maintenance.WithRepair(cfg.Maintenance.RepairOrdering),
		)
		if err := stack.Auditor.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
		// A start-up pass surfaces problems left by earlier runs straight away.
		if err := stack.Auditor.RunOnce(ctx); err != nil {
			log.Warn("initial integrity audit failed", zap.Error(err))
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Auditor != nil {
		stopCtx := s.Auditor.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
		s.Auditor = nil
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
		s.DB = nil
	}
}

func initialiseDatabase(cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		closeDatabase(db, log)
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	log.Info("database connected", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
