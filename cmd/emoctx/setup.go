package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/internal/service/emotion"
	"github.com/sandevgo/tuskheart/internal/storage/sqlite"
	"github.com/sandevgo/tuskheart/pkg/log"
	"github.com/spf13/cobra"
)

// app holds everything a subcommand needs. close releases it in reverse
// order of acquisition.
type app struct {
	cfg    *config.AppConfig
	policy *config.PolicyConfig

	db         *sql.DB
	ratings    *sqlite.RatingsRepo
	activities *sqlite.ActivityRepo
	topics     *sqlite.TopicsRepo
	consents   *sqlite.ConsentRepo

	auditor *audit.Logger
	closers []func() error
}

func (a *app) composer() *emotion.Composer {
	return emotion.NewComposerFromRepos(*a.policy, a.auditor, a.ratings, a.activities, a.topics)
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// runWithApp sets up logging, config and storage around fn.
func runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, flushLog := setupLogger(cmd.Context())
	defer flushLog()

	a, err := newApp(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to initialize")
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to release resources")
		}
	}()

	return fn(ctx, a)
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	a := &app{
		cfg:    config.NewAppConfig(ctx),
		policy: config.NewPolicyConfig(ctx),
	}

	db, err := sqlite.NewDB(ctx, a.cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	a.ratings = sqlite.NewRatingsRepo(db)
	a.activities = sqlite.NewActivityRepo(db)
	a.topics = sqlite.NewTopicsRepo(db)
	a.consents = sqlite.NewConsentRepo(db)

	sink, err := initAuditSink(ctx, a)
	if err != nil {
		a.close()
		return nil, err
	}
	a.auditor = audit.New(sink, a.policy.Version)

	return a, nil
}

func initAuditSink(ctx context.Context, a *app) (audit.Sink, error) {
	sinks := audit.MultiSink{audit.NewMetricsSink()}

	if a.cfg.AuditToFile {
		fileSink, err := audit.NewFileSink(a.cfg.GetAuditLogPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		a.closers = append(a.closers, fileSink.Close)
		sinks = append(sinks, fileSink)
	}

	if a.cfg.AuditToLog {
		sinks = append(sinks, audit.NewLogSink(*log.FromCtx(ctx)))
	}

	return sinks, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

// parseAt reads an optional RFC3339 timestamp flag. Empty means now.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want RFC3339", value)
	}
	return t, nil
}
