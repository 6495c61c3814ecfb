package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/khrees2412/jobdeck/internal/applicator"
	"github.com/khrees2412/jobdeck/internal/catalog"
	"github.com/khrees2412/jobdeck/internal/config"
	"github.com/khrees2412/jobdeck/internal/database"
	"github.com/khrees2412/jobdeck/internal/filter"
	"github.com/khrees2412/jobdeck/internal/pagesize"
	"github.com/khrees2412/jobdeck/internal/querystate"
	"github.com/khrees2412/jobdeck/internal/storage"
	"github.com/khrees2412/jobdeck/internal/syncbus"
	"github.com/khrees2412/jobdeck/internal/views"
	"github.com/khrees2412/jobdeck/pkg/models"
)

// App is the dependency container for the CLI application
type App struct {
	Config *config.Config
	DB     *sql.DB

	Medium  storage.Medium
	Bus     *syncbus.Bus
	Saved   *storage.SavedJobs
	Applied *storage.AppliedJobs

	Catalog    *catalog.SQLiteCatalog
	Engine     *filter.Engine
	Bank       *filter.FacetBank
	Sizer      *pagesize.Sizer
	Navigator  *querystate.MemoryNavigator
	Binder     *querystate.Binder
	Applicator *applicator.Applicator

	stopWatch context.CancelFunc
}

// NewApp loads ~/.jobdeck/config.yaml and builds the App from it
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return New(ctx, cfg)
}

// New builds every long-lived handle described by cfg. Close releases them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	medium, err := openMedium(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	bus := syncbus.New()
	engine := filter.NewEngine()
	nav := querystate.NewMemoryNavigator("")
	saved := storage.NewSavedJobs(medium, bus)
	applied := storage.NewAppliedJobs(medium, bus)

	a := &App{
		Config:     cfg,
		DB:         db,
		Medium:     medium,
		Bus:        bus,
		Saved:      saved,
		Applied:    applied,
		Catalog:    catalog.NewSQLiteCatalog(db, engine),
		Engine:     engine,
		Bank:       filter.NewFacetBank(engine),
		Sizer:      pagesize.New(),
		Navigator:  nav,
		Binder:     querystate.NewBinder(nav, models.FacetEmploymentType, models.FacetExperienceLevel, models.FacetTag, models.FacetLocation),
		Applicator: applicator.New(applied, applicator.UserSession{User: cfg.Session.User}),
	}
	if cfg.Viewport.Width > 0 {
		a.Sizer.Resize(cfg.Viewport.Width)
	}
	return a, nil
}

func openMedium(ctx context.Context, cfg *config.Config, db *sql.DB) (storage.Medium, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return storage.NewSQLiteMedium(db), nil
	case config.DriverFile:
		fm, err := storage.NewFileMedium(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		return fm, nil
	case config.DriverRedis:
		rdb, err := storage.NewRedisClient(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisMedium(rdb, cfg.Store.Prefix), nil
	case config.DriverMemory:
		return storage.NewMemoryMedium(0), nil
	}
	return nil, fmt.Errorf("%w: store driver %q", ErrInvalidArgument, cfg.Store.Driver)
}

// Watch forwards changes made by other processes to the bus until ctx is done
// or the App is closed. Media without a change signal return
// ErrNoExternalSignal.
func (a *App) Watch(ctx context.Context) error {
	watcher, ok := a.Medium.(storage.Watcher)
	if !ok {
		return ErrNoExternalSignal
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := watcher.Watch(ctx, a.Bus.DeliverExternal); err != nil {
		cancel()
		return fmt.Errorf("failed to watch %s store: %w", a.Config.Store.Driver, err)
	}
	a.stopWatch = cancel
	return nil
}

// JobList returns the job list view over the app's navigator.
func (a *App) JobList() *views.JobListView {
	return views.NewJobListView(views.JobListDeps{
		Catalog: a.Catalog,
		Binder:  a.Binder,
		Engine:  a.Engine,
		Sizer:   a.Sizer,
		Bank:    a.Bank,
		Saved:   a.Saved,
	})
}

func (a *App) SavedView(ctx context.Context) *views.SavedJobsView {
	return views.NewSavedJobsView(ctx, a.Saved, a.Bus, a.Sizer)
}

func (a *App) AppliedView(ctx context.Context) *views.AppliedJobsView {
	return views.NewAppliedJobsView(ctx, a.Applied, a.Applicator, a.Bus, a.Sizer)
}

// Close closes all resources
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.Saved.Close()
	a.Applied.Close()
	a.Bank.Reset()

	var errs []error
	if err := a.Medium.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("app shutdown", "err", err)
		return err
	}
	return nil
}
