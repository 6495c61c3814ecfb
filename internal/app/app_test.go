package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/khrees2412/jobdeck/internal/config"
	"github.com/khrees2412/jobdeck/pkg/models"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Store:    config.StoreConfig{Driver: driver, Dir: filepath.Join(dir, "store")},
		Catalog:  config.CatalogConfig{Path: filepath.Join(dir, "jobdeck.db")},
		Viewport: config.ViewportConfig{CellWidth: 8},
		Session:  config.SessionConfig{User: "ada"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewWiresEveryDriver(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverFile, config.DriverMemory} {
		t.Run(driver, func(t *testing.T) {
			a := newTestApp(t, testConfig(t, driver))
			ctx := context.Background()

			job := models.JobSummary{ID: "42", Title: "Backend Engineer", CompanyName: "Acme"}
			if err := a.Catalog.Add(ctx, job); err != nil {
				t.Fatalf("catalog Add: %v", err)
			}

			saved := a.SavedView(ctx)
			defer saved.Close()
			list := a.JobList()

			if !list.ToggleSave(ctx, job) {
				t.Fatal("ToggleSave returned false")
			}
			if got := saved.Records(); len(got) != 1 || got[0].ID != "42" {
				t.Errorf("saved view = %+v", got)
			}

			page, err := list.Page(ctx)
			if err != nil || page.Total != 1 {
				t.Errorf("Page() = %+v, %v", page, err)
			}
		})
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, "mongo"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New() error = %v, want ErrInvalidArgument", err)
	}
}

func TestViewportWidthOverride(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Viewport.Width = 1300
	a := newTestApp(t, cfg)
	if got := a.Sizer.PageSize(); got != 30 {
		t.Errorf("PageSize() = %d, want 30", got)
	}
}

func TestWatchWithoutSignal(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.DriverMemory))
	if err := a.Watch(context.Background()); !errors.Is(err, ErrNoExternalSignal) {
		t.Errorf("Watch() = %v, want ErrNoExternalSignal", err)
	}
}

func TestWatchDeliversOtherProcessWrites(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	reader := newTestApp(t, cfg)

	// A second container over the same store directory stands in for another
	// process.
	writerCfg := *cfg
	writerCfg.Catalog.Path = filepath.Join(t.TempDir(), "other.db")
	writer := newTestApp(t, &writerCfg)

	ctx := context.Background()
	if err := reader.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	view := reader.SavedView(ctx)
	defer view.Close()

	changed := make(chan struct{}, 1)
	view.OnChange(func([]models.SavedRecord) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	writer.JobList().ToggleSave(ctx, models.JobSummary{ID: "7", Title: "Designer", CompanyName: "Beta"})

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the external change")
	}
	if got := view.Records(); len(got) != 1 || got[0].ID != "7" {
		t.Errorf("reader view = %+v", got)
	}
}
