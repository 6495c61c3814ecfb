package views

import (
	"context"
	"slices"
	"sync"

	"github.com/khrees2412/jobdeck/internal/applicator"
	"github.com/khrees2412/jobdeck/internal/filter"
	"github.com/khrees2412/jobdeck/internal/pagesize"
	"github.com/khrees2412/jobdeck/internal/storage"
	"github.com/khrees2412/jobdeck/internal/syncbus"
	"github.com/khrees2412/jobdeck/pkg/models"
)

// RecordView keeps a transient copy of one collection. The copy is refreshed
// whenever the collection's topic is published in this process or the
// collection's key changes in another one.
type RecordView[T storage.Record] struct {
	coll  *storage.Collection[T]
	sizer *pagesize.Sizer

	mu        sync.Mutex
	records   []T
	listeners []func([]T)
	unsubs    []syncbus.Unsubscribe
}

func newRecordView[T storage.Record](ctx context.Context, coll *storage.Collection[T], bus *syncbus.Bus, sizer *pagesize.Sizer) *RecordView[T] {
	v := &RecordView[T]{coll: coll, sizer: sizer}
	v.unsubs = []syncbus.Unsubscribe{
		bus.Subscribe(coll.Topic(), func(syncbus.Topic) {
			v.refresh(context.Background())
		}),
		bus.SubscribeExternal(func(key string) {
			if key == coll.Key() {
				v.refresh(context.Background())
			}
		}),
	}
	v.refresh(ctx)
	return v
}

// refresh reads the collection under v.mu, so concurrent refreshes store
// their copies in the order they read them.
func (v *RecordView[T]) refresh(ctx context.Context) {
	v.mu.Lock()
	records := v.coll.List(ctx)
	v.records = records
	listeners := slices.Clone(v.listeners)
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(records)
	}
}

// Records returns the current copy, most recent first.
func (v *RecordView[T]) Records() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.records)
}

// Page returns page index of the current copy at the sizer's page size.
func (v *RecordView[T]) Page(index int) filter.Page[T] {
	return filter.Paginate(v.Records(), index, v.sizer.PageSize())
}

// Remove deletes id from the collection.
func (v *RecordView[T]) Remove(ctx context.Context, id string) bool {
	return v.coll.Remove(ctx, id)
}

// OnChange registers fn to run with the new copy after every refresh.
func (v *RecordView[T]) OnChange(fn func([]T)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Close drops both subscriptions. It is safe to call more than once.
func (v *RecordView[T]) Close() {
	v.mu.Lock()
	unsubs := v.unsubs
	v.unsubs = nil
	v.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// SavedJobsView is the management view of bookmarked jobs.
type SavedJobsView struct {
	*RecordView[models.SavedRecord]
	saved *storage.SavedJobs
}

func NewSavedJobsView(ctx context.Context, saved *storage.SavedJobs, bus *syncbus.Bus, sizer *pagesize.Sizer) *SavedJobsView {
	return &SavedJobsView{
		RecordView: newRecordView(ctx, saved, bus, sizer),
		saved:      saved,
	}
}

// Clear unsaves every job.
func (v *SavedJobsView) Clear(ctx context.Context) bool {
	return v.saved.Clear(ctx)
}

// AppliedJobsView is the management view of submitted applications.
type AppliedJobsView struct {
	*RecordView[models.AppliedRecord]
	applicator *applicator.Applicator
}

func NewAppliedJobsView(ctx context.Context, applied *storage.AppliedJobs, app *applicator.Applicator, bus *syncbus.Bus, sizer *pagesize.Sizer) *AppliedJobsView {
	return &AppliedJobsView{
		RecordView: newRecordView(ctx, applied, bus, sizer),
		applicator: app,
	}
}

// Expire marks the application for id as expired.
func (v *AppliedJobsView) Expire(ctx context.Context, id string) bool {
	return v.applicator.Expire(ctx, id)
}
