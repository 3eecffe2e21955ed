package events

import (
	"context"
	"encoding/json"
	"vitals/config"
	"vitals/internal/database"
	"vitals/internal/logger"
	. "vitals/internal/models"

	"github.com/valkey-io/valkey-go"
)

const progressChannel = "ingestion:progress"

// EventBus bridges the cache's pub/sub channel to in-process consumers.
// Ingestion publishes progress updates; the websocket manager drains
// Progress() and pushes them to connected clients. Running it over
// pub/sub rather than a process-local channel keeps fan-out working when
// the API and the ingestion worker are separate processes.
type EventBus struct {
	client   database.CacheClient
	progress chan ProgressUpdate
	cancel   context.CancelFunc
	log      logger.Logger
}

func New(client database.CacheClient, config config.Config) *EventBus {
	log := logger.New("events")

	ctx, cancel := context.WithCancel(context.Background())
	bus := &EventBus{
		client:   client,
		progress: make(chan ProgressUpdate, 64),
		cancel:   cancel,
		log:      log,
	}

	if client != nil {
		go bus.subscribe(ctx)
	}

	return bus
}

func (b *EventBus) subscribe(ctx context.Context) {
	log := b.log.Function("subscribe")

	err := b.client.Receive(ctx,
		b.client.B().Subscribe().Channel(progressChannel).Build(),
		func(msg valkey.PubSubMessage) {
			var update ProgressUpdate
			if err := json.Unmarshal([]byte(msg.Message), &update); err != nil {
				log.Er("failed to decode progress message", err, "message", msg.Message)
				return
			}

			select {
			case b.progress <- update:
			default:
				log.Warn("progress channel full, dropping update", "email", update.UserEmail)
			}
		})
	if err != nil && ctx.Err() == nil {
		log.Er("progress subscription ended", err)
	}
}

// PublishProgress fans a progress update out to every subscribed process.
func (b *EventBus) PublishProgress(ctx context.Context, update ProgressUpdate) error {
	log := b.log.Function("PublishProgress")

	payload, err := json.Marshal(update)
	if err != nil {
		return log.Err("failed to marshal progress update", err)
	}

	// Without a cache client the bus degrades to in-process delivery only.
	if b.client == nil {
		select {
		case b.progress <- update:
		default:
			log.Warn("progress channel full, dropping update", "email", update.UserEmail)
		}
		return nil
	}

	err = b.client.Do(ctx,
		b.client.B().Publish().Channel(progressChannel).Message(string(payload)).Build()).Error()
	if err != nil {
		return log.Err("failed to publish progress update", err, "email", update.UserEmail)
	}

	return nil
}

func (b *EventBus) Progress() <-chan ProgressUpdate {
	return b.progress
}

func (b *EventBus) Close() error {
	b.cancel()
	return nil
}
