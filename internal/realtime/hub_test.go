package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakePublisher struct {
	err error
	n   int
}

func (f *fakePublisher) PublishOrgEvent(uuid.UUID, string, []byte) error {
	f.n++
	return f.err
}

type fakeSubscriber struct{}

func (f *fakeSubscriber) SubscribeOrg(uuid.UUID, func(string, []byte)) (func(), error) {
	return func() {}, nil
}

func newTestClient(orgIDs ...uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: uuid.New(),
		OrgIDs: orgIDs,
		send:   make(chan WSMessage, 4),
	}
}

func TestPublishDeliversLocallyWithoutRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	orgID := uuid.New()
	watcher := newTestClient(orgID)
	outsider := newTestClient(uuid.New())
	hub.Register(watcher)
	hub.Register(outsider)

	hub.Publish(orgID, "opt_in_changed", map[string]any{"opted_in": true})

	select {
	case msg := <-watcher.send:
		if msg.Event != "opt_in_changed" {
			t.Errorf("event = %q", msg.Event)
		}
	default:
		t.Fatal("watcher received nothing")
	}
	select {
	case msg := <-outsider.send:
		t.Errorf("outsider received %q", msg.Event)
	default:
	}

	hub.Unregister(watcher)
	if n := hub.WatcherCount(orgID); n != 0 {
		t.Errorf("watchers after unregister = %d, want 0", n)
	}
}

func TestPublishPrefersRedisChannel(t *testing.T) {
	pub := &fakePublisher{}
	hub := NewHub(zap.NewNop(), pub, &fakeSubscriber{})
	orgID := uuid.New()
	watcher := newTestClient(orgID)
	hub.Register(watcher)

	// With a working publisher the local copy arrives via the
	// subscription callback, never directly.
	hub.Publish(orgID, "opt_in_changed", nil)
	if pub.n != 1 {
		t.Errorf("publishes = %d, want 1", pub.n)
	}
	select {
	case <-watcher.send:
		t.Error("direct local delivery despite redis publish")
	default:
	}

	// A failing publisher falls back to local delivery.
	pub.err = errors.New("redis down")
	hub.Publish(orgID, "opt_in_changed", nil)
	select {
	case <-watcher.send:
	default:
		t.Error("no local fallback when publish fails")
	}
}

func TestPublishDuringClientChurn(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	orgID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c := newTestClient(orgID)
			hub.Register(c)
			hub.Unregister(c)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.Publish(orgID, "opt_in_changed", fmt.Sprintf("payload-%d", i))
		}
	}()
	wg.Wait()
}
