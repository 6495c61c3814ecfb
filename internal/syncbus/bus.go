// Package syncbus carries change notifications between views that share no
// parent state.
//
// There are two independent paths. In-process topics are published by every
// record collection mutation and dispatched synchronously. The external path
// carries "storage changed" signals raised by other processes writing the same
// durable medium; it never fires for this process's own writes. Observers that
// want cross-process consistency subscribe to both.
package syncbus

import "sync"

// Topic names an in-process notification channel.
type Topic string

const (
	SavedJobsChanged   Topic = "saved-jobs-changed"
	AppliedJobsChanged Topic = "applied-jobs-changed"
)

// Collection keys in the durable store.
const (
	SavedJobsKey   = "saved-jobs"
	AppliedJobsKey = "applied-jobs"
)

// TopicFor returns the topic that announces changes to a collection key.
func TopicFor(key string) Topic {
	return Topic(key + "-changed")
}

// Handler is invoked on Publish.
type Handler func(Topic)

// ExternalHandler is invoked when another process changed key.
type ExternalHandler func(key string)

// Unsubscribe removes a subscription. Calling it more than once is harmless.
type Unsubscribe func()

type subscription struct {
	id      uint64
	handler Handler
}

type externalSubscription struct {
	id      uint64
	handler ExternalHandler
}

// Bus is a typed publish/subscribe channel. The zero value is not usable;
// create one with New.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	topics   map[Topic][]subscription
	external []externalSubscription
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{topics: make(map[Topic][]subscription)}
}

// Subscribe registers handler for topic. Handlers run in registration order.
func (b *Bus) Subscribe(topic Topic, handler Handler) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			rest := make([]subscription, 0, len(subs)-1)
			rest = append(rest, subs[:i]...)
			rest = append(rest, subs[i+1:]...)
			if len(rest) == 0 {
				delete(b.topics, topic)
			} else {
				b.topics[topic] = rest
			}
			return
		}
	}
}

// Publish invokes every handler currently subscribed to topic on the calling
// goroutine and returns after the last one completes. Handlers added or
// removed during dispatch take effect from the next Publish.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.topics[topic]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(topic)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

// SubscribeExternal registers handler for the cross-process signal.
func (b *Bus) SubscribeExternal(handler ExternalHandler) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.external = append(b.external, externalSubscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.external {
				if s.id == id {
					b.external = append(b.external[:i:i], b.external[i+1:]...)
					return
				}
			}
		})
	}
}

// DeliverExternal dispatches a storage-changed signal for key. Medium
// watchers call it; it is not published by this process's own mutations.
func (b *Bus) DeliverExternal(key string) {
	b.mu.Lock()
	subs := append([]externalSubscription(nil), b.external...)
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(key)
	}
}

// ExternalSubscribers returns the number of external handlers.
func (b *Bus) ExternalSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.external)
}
