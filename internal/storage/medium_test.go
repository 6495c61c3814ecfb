package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/khrees2412/jobdeck/internal/database"
	"github.com/khrees2412/jobdeck/internal/syncbus"
)

func exerciseMedium(t *testing.T, m Medium) {
	t.Helper()
	ctx := context.Background()

	got, err := m.Get(ctx, "saved-jobs")
	if err != nil || got != nil {
		t.Fatalf("Get on missing key = %q, %v; want nil, nil", got, err)
	}

	if err := m.Set(ctx, "saved-jobs", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "saved-jobs", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = m.Get(ctx, "saved-jobs")
	if err != nil || string(got) != `[{"id":"2"}]` {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := m.Delete(ctx, "saved-jobs"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, "saved-jobs"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}
	got, _ = m.Get(ctx, "saved-jobs")
	if got != nil {
		t.Errorf("expected nil after delete, got %q", got)
	}

	if err := m.Set(ctx, "../escape", []byte("x")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryMedium(t *testing.T) {
	exerciseMedium(t, NewMemoryMedium(0))
}

func TestMemoryMediumQuota(t *testing.T) {
	m := NewMemoryMedium(10)
	ctx := context.Background()
	if err := m.Set(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}
	if err := m.Set(ctx, "b", []byte("123456")); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	// Overwriting a key only counts its new size.
	if err := m.Set(ctx, "a", []byte("1234567890")); err != nil {
		t.Errorf("overwrite within quota: %v", err)
	}
}

func TestSQLiteMedium(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	exerciseMedium(t, NewSQLiteMedium(db))
}

func TestSQLiteMediumBacksCollection(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	saved := NewSavedJobs(NewSQLiteMedium(db), syncbus.New())
	ToggleSaved(ctx, saved, job("42", "Backend Engineer", "Acme"), time.Now())
	saved.Close()

	reopened := NewSavedJobs(NewSQLiteMedium(db), syncbus.New())
	defer reopened.Close()
	if !reopened.Contains(ctx, "42") {
		t.Error("save should survive a new collection over the same database")
	}
}

func TestFileMedium(t *testing.T) {
	m, err := NewFileMedium(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileMedium: %v", err)
	}
	defer m.Close()
	exerciseMedium(t, m)
}

func TestFileMediumLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	m, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("NewFileMedium: %v", err)
	}
	defer m.Close()

	if err := m.Set(context.Background(), "applied-jobs", []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "applied-jobs.json" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}

func TestFileMediumSignalsForeignWrites(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	defer writer.Close()
	reader, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := make(chan string, 16)
	if err := reader.Watch(ctx, func(key string) { keys <- key }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// The reader's own write must not come back as a signal.
	if err := reader.Set(ctx, "applied-jobs", []byte(`[{"id":"own"}]`)); err != nil {
		t.Fatalf("own Set: %v", err)
	}
	if err := writer.Set(ctx, "saved-jobs", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("foreign Set: %v", err)
	}

	select {
	case key := <-keys:
		if key != "saved-jobs" {
			t.Fatalf("expected saved-jobs signal first, got %q", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no signal for foreign write")
	}

	// Drain any duplicate events for the same write and make sure the own
	// write never shows up.
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case key := <-keys:
			if key == "applied-jobs" {
				t.Fatal("own write was signalled")
			}
		case <-deadline:
			return
		}
	}
}

func TestFileMediumFeedsBusAndCollection(t *testing.T) {
	dir := t.TempDir()
	other, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("other: %v", err)
	}
	defer other.Close()
	mine, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	defer mine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := syncbus.New()
	if err := mine.Watch(ctx, bus.DeliverExternal); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	saved := NewSavedJobs(mine, bus)
	defer saved.Close()

	changed := make(chan struct{}, 16)
	unsub := bus.SubscribeExternal(func(key string) {
		if key != syncbus.SavedJobsKey {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsub()

	otherSaved := NewSavedJobs(other, syncbus.New())
	defer otherSaved.Close()
	ToggleSaved(ctx, otherSaved, job("99", "Remote SRE", "Gamma"), time.Now())

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("external change never delivered")
	}
	if !saved.Contains(ctx, "99") {
		t.Error("collection should see the other process's save")
	}
}

func TestRedisMedium(t *testing.T) {
	url := os.Getenv("JOBDECK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JOBDECK_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	prefix := "jobdeck-test:" + time.Now().Format("150405.000000") + ":"
	m := NewRedisMedium(rdb, prefix)
	defer m.Close()
	exerciseMedium(t, m)

	rdb2, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	other := NewRedisMedium(rdb2, prefix)
	defer other.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	keys := make(chan string, 4)
	if err := m.Watch(watchCtx, func(key string) { keys <- key }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := m.Set(ctx, "applied-jobs", []byte("[]")); err != nil {
		t.Fatalf("own Set: %v", err)
	}
	if err := other.Set(ctx, "saved-jobs", []byte("[]")); err != nil {
		t.Fatalf("foreign Set: %v", err)
	}
	select {
	case key := <-keys:
		if key != "saved-jobs" {
			t.Errorf("expected saved-jobs, got %q", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no signal for foreign write")
	}
}
