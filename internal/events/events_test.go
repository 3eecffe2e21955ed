package events

import (
	"context"
	"testing"
	"time"
	"vitals/config"
	. "vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishProgress_LocalFallbackWithoutClient(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	update := ProgressUpdate{UserEmail: "ada@example.com", Source: "google-fit", Progress: 55}
	require.NoError(t, bus.PublishProgress(context.Background(), update))

	select {
	case got := <-bus.Progress():
		assert.Equal(t, update, got)
	case <-time.After(time.Second):
		t.Fatal("locally published update never arrived")
	}
}

func TestPublishProgress_DropsWhenChannelFull(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	update := ProgressUpdate{UserEmail: "ada@example.com", Progress: 1}
	for i := 0; i < 200; i++ {
		require.NoError(t, bus.PublishProgress(context.Background(), update))
	}

	// Everything buffered is still readable; the overflow was dropped.
	drained := 0
	for {
		select {
		case <-bus.Progress():
			drained++
		default:
			assert.Equal(t, 64, drained)
			return
		}
	}
}
