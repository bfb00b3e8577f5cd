package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/tutor-scheduler/internal/application"
	"github.com/example/tutor-scheduler/internal/config"
	"github.com/example/tutor-scheduler/internal/logging"
	"github.com/example/tutor-scheduler/internal/persistence/sqlite"
	"github.com/example/tutor-scheduler/internal/recurrence"
)

const defaultConfigPath = "tutorsched.toml"

// commandContext carries the flag values shared by every subcommand and
// memoizes the loaded configuration.
type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	cfg    *config.Config
	logger *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}

	path := defaultConfigPath
	if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
		path = strings.TrimSpace(*c.configFlag)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		cfg.LogLevel = strings.TrimSpace(*c.logLevelFlag)
	}

	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.logger = logging.New(os.Stderr, cfg.LogLevel)
	return c.logger, nil
}

// app bundles the opened store and the wired services for one command run.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *sqlite.Store

	students *application.StudentService
	lessons  *application.LessonService
	rules    *application.RuleService
	progress *application.ProgressService
	timeline *application.TimelineService
}

func (c *commandContext) openApp(ctx context.Context) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving time zone: %w", err)
	}
	cacheTTL, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	idGenerator := uuid.NewString
	now := time.Now
	expander := recurrence.NewExpander(location)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		students: application.NewStudentService(store, idGenerator, now, logger),
		lessons:  application.NewLessonService(store, store, idGenerator, now, logger),
		rules:    application.NewRuleService(store, store, idGenerator, now, logger),
		progress: application.NewProgressService(store, store, idGenerator, now, logger),
		timeline: application.NewTimelineService(store, store, expander, idGenerator, now, logger,
			application.WithTimelineCacheTTL(cacheTTL)),
	}, nil
}

func (a *app) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}
