package websockets

import (
	"context"
	"encoding/json"
	"testing"
	"time"
	"vitals/config"
	"vitals/internal/events"
	. "vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	email string
	err   error
}

func (r *staticResolver) ResolveToken(_ string) (string, error) {
	return r.email, r.err
}

func newTestManager(t *testing.T) (*Manager, *events.EventBus) {
	t.Helper()

	bus := events.New(nil, config.Config{})
	manager, err := New(bus, &staticResolver{email: "ada@example.com"}, config.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		manager.Close()
		_ = bus.Close()
	})

	return manager, bus
}

func registerClient(m *Manager, email string) *client {
	c := &client{
		id:    "test-client-" + email,
		email: email,
		send:  make(chan []byte, 16),
	}
	m.register <- c
	return c
}

func TestNew_RequiresResolver(t *testing.T) {
	bus := events.New(nil, config.Config{})
	defer bus.Close()

	_, err := New(bus, nil, config.Config{})
	assert.Error(t, err)
}

func TestManager_DeliversProgressToOwner(t *testing.T) {
	manager, bus := newTestManager(t)

	c := registerClient(manager, "ada@example.com")

	update := ProgressUpdate{UserEmail: "ada@example.com", Source: "google-fit", Progress: 40}
	require.NoError(t, bus.PublishProgress(context.Background(), update))

	select {
	case payload := <-c.send:
		var got ProgressUpdate
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, update, got)
	case <-time.After(time.Second):
		t.Fatal("progress update never delivered")
	}
}

func TestManager_DoesNotLeakAcrossUsers(t *testing.T) {
	manager, bus := newTestManager(t)

	ada := registerClient(manager, "ada@example.com")
	grace := registerClient(manager, "grace@example.com")

	update := ProgressUpdate{UserEmail: "grace@example.com", Source: "fitbit", Progress: 75}
	require.NoError(t, bus.PublishProgress(context.Background(), update))

	select {
	case <-grace.send:
	case <-time.After(time.Second):
		t.Fatal("progress update never delivered to its owner")
	}

	select {
	case payload := <-ada.send:
		t.Fatalf("update leaked to another user's connection: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_FansOutToAllOfUsersConnections(t *testing.T) {
	manager, bus := newTestManager(t)

	first := registerClient(manager, "ada@example.com")
	second := registerClient(manager, "ada@example.com")

	update := ProgressUpdate{UserEmail: "ada@example.com", Source: "garmin", Progress: 100}
	require.NoError(t, bus.PublishProgress(context.Background(), update))

	for _, c := range []*client{first, second} {
		select {
		case <-c.send:
		case <-time.After(time.Second):
			t.Fatal("one of the user's connections missed the update")
		}
	}
}

func TestManager_UnregisterClosesSendChannel(t *testing.T) {
	manager, _ := newTestManager(t)

	c := registerClient(manager, "ada@example.com")
	manager.unregister <- c

	select {
	case _, open := <-c.send:
		assert.False(t, open, "send channel must be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestManager_DropsUpdatesForSlowClient(t *testing.T) {
	manager, bus := newTestManager(t)

	c := &client{
		id:    "slow",
		email: "ada@example.com",
		send:  make(chan []byte), // unbuffered and never drained
	}
	manager.register <- c

	// Must not block the run loop.
	update := ProgressUpdate{UserEmail: "ada@example.com", Source: "google-fit", Progress: 10}
	require.NoError(t, bus.PublishProgress(context.Background(), update))
	require.NoError(t, bus.PublishProgress(context.Background(), update))

	fresh := registerClient(manager, "grace@example.com")
	require.NoError(t, bus.PublishProgress(context.Background(),
		ProgressUpdate{UserEmail: "grace@example.com", Progress: 20}))

	select {
	case <-fresh.send:
	case <-time.After(time.Second):
		t.Fatal("run loop wedged behind a slow client")
	}
}

func TestManager_ShutdownDoesNotBlockHandlers(t *testing.T) {
	bus := events.New(nil, config.Config{})
	defer bus.Close()

	manager, err := New(bus, &staticResolver{email: "ada@example.com"}, config.Config{})
	require.NoError(t, err)

	live := registerClient(manager, "ada@example.com")
	manager.Close()

	// A connection arriving after shutdown must be refused, not parked on
	// the register channel forever.
	done := make(chan bool, 1)
	go func() {
		done <- manager.addClient(&client{
			id:    "late",
			email: "grace@example.com",
			send:  make(chan []byte, 16),
		})
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("addClient blocked after shutdown")
	}

	// Likewise a disconnect racing the shutdown.
	finished := make(chan struct{})
	go func() {
		manager.removeClient(live)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("removeClient blocked after shutdown")
	}
}
