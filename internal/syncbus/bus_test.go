package syncbus_test

import (
	"reflect"
	"testing"

	"github.com/khrees2412/jobdeck/internal/syncbus"
)

// ── Publish / Subscribe ────────────────────────────────────────────────────

func TestPublishRunsHandlersInRegistrationOrder(t *testing.T) {
	bus := syncbus.New()
	var calls []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) { calls = append(calls, name) })
	}

	bus.Publish(syncbus.SavedJobsChanged)

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestPublishIsTopicScoped(t *testing.T) {
	bus := syncbus.New()
	saved, applied := 0, 0
	bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) { saved++ })
	bus.Subscribe(syncbus.AppliedJobsChanged, func(syncbus.Topic) { applied++ })

	bus.Publish(syncbus.AppliedJobsChanged)

	if saved != 0 || applied != 1 {
		t.Errorf("saved=%d applied=%d, want 0 and 1", saved, applied)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	syncbus.New().Publish(syncbus.Topic("nobody-listens"))
}

func TestUnsubscribe(t *testing.T) {
	bus := syncbus.New()
	calls := 0
	unsub := bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) { calls++ })

	bus.Publish(syncbus.SavedJobsChanged)
	unsub()
	unsub()
	bus.Publish(syncbus.SavedJobsChanged)

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if n := bus.Subscribers(syncbus.SavedJobsChanged); n != 0 {
		t.Errorf("%d subscribers left after unsubscribe", n)
	}
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	bus := syncbus.New()
	var calls []string
	var unsubA syncbus.Unsubscribe
	unsubA = bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) {
		calls = append(calls, "a")
		unsubA()
	})
	bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) { calls = append(calls, "b") })

	bus.Publish(syncbus.SavedJobsChanged)
	bus.Publish(syncbus.SavedJobsChanged)

	if want := []string{"a", "b", "b"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestTopicFor(t *testing.T) {
	if got := syncbus.TopicFor(syncbus.SavedJobsKey); got != syncbus.SavedJobsChanged {
		t.Errorf("TopicFor(saved-jobs) = %q", got)
	}
	if got := syncbus.TopicFor(syncbus.AppliedJobsKey); got != syncbus.AppliedJobsChanged {
		t.Errorf("TopicFor(applied-jobs) = %q", got)
	}
}

// ── External path ──────────────────────────────────────────────────────────

func TestExternalPathIsSeparate(t *testing.T) {
	bus := syncbus.New()
	inTab := 0
	var external []string
	bus.Subscribe(syncbus.SavedJobsChanged, func(syncbus.Topic) { inTab++ })
	unsub := bus.SubscribeExternal(func(key string) { external = append(external, key) })

	bus.Publish(syncbus.SavedJobsChanged)
	bus.DeliverExternal(syncbus.SavedJobsKey)

	if inTab != 1 {
		t.Errorf("in-process handler called %d times, want 1", inTab)
	}
	if want := []string{syncbus.SavedJobsKey}; !reflect.DeepEqual(external, want) {
		t.Errorf("external = %v, want %v", external, want)
	}

	unsub()
	bus.DeliverExternal(syncbus.SavedJobsKey)
	if len(external) != 1 {
		t.Error("external handler called after unsubscribe")
	}
	if bus.ExternalSubscribers() != 0 {
		t.Error("external subscription leaked")
	}
}
