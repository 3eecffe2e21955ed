package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"vitals/config"
	"vitals/internal/database"
	"vitals/internal/events"
	"vitals/internal/logger"
	. "vitals/internal/models"
	"vitals/internal/repositories"
	"vitals/internal/utils"

	"github.com/segmentio/kafka-go"
)

const PROGRESS_KEY_EXPIRY = 1 * time.Hour

// Consumer drains the raw health data topic into the sample store. Each
// message is one observation; malformed messages are logged and skipped
// so one bad producer cannot wedge the partition. Progress metadata on the
// messages is written to the Progress cache and fanned out over the event
// bus for the websocket relay.
type Consumer struct {
	reader     *kafka.Reader
	db         database.DB
	sampleRepo repositories.SampleRepository
	eventBus   *events.EventBus
	log        logger.Logger
}

func New(
	db database.DB,
	sampleRepo repositories.SampleRepository,
	eventBus *events.EventBus,
	config config.Config,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(config.KafkaBrokers, ","),
		GroupID:  config.KafkaConsumerGroup,
		Topic:    config.KafkaRawDataTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})

	return &Consumer{
		reader:     reader,
		db:         db,
		sampleRepo: sampleRepo,
		eventBus:   eventBus,
		log:        logger.New("ingestion"),
	}
}

// Run consumes until ctx is cancelled. Offsets are committed after the
// sample has landed, so a crash re-delivers rather than loses; the store
// is append-only and duplicate observations are acceptable per contract.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.log.Function("Run")
	log.Info("ingestion consumer started")

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return log.Err("failed to fetch message", err)
		}

		if err := c.handleMessage(ctx, message.Value); err != nil {
			log.Er("failed to process message", err, "offset", message.Offset)
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return log.Err("failed to commit offset", err, "offset", message.Offset)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, payload []byte) error {
	log := c.log.Function("handleMessage")

	var raw RawSampleMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return log.Err("failed to decode raw sample message", err)
	}

	if raw.UserEmail == "" {
		return log.Error("message has no user email")
	}

	dataType, err := ParseDataType(raw.DataType)
	if err != nil {
		return log.Err("message has unrecognized data type", err, "dataType", raw.DataType)
	}

	sampleTime, err := utils.ParseTimestamp(raw.Time)
	if err != nil {
		return log.Err("message has unparseable timestamp", err, "time", raw.Time)
	}

	sample := &Sample{
		UserEmail: raw.UserEmail,
		DataType:  dataType,
		Time:      sampleTime.Time,
		Value:     raw.Value,
	}
	if err := c.sampleRepo.Append(ctx, sample); err != nil {
		return err
	}

	c.reportProgress(ctx, raw)

	return nil
}

func (c *Consumer) reportProgress(ctx context.Context, raw RawSampleMessage) {
	if raw.Total <= 0 {
		return
	}

	log := c.log.Function("reportProgress")

	percent := float64(raw.Seq) / float64(raw.Total) * 100
	if percent > 100 {
		percent = 100
	}

	update := ProgressUpdate{
		UserEmail: raw.UserEmail,
		Source:    raw.Source,
		Progress:  percent,
	}

	key := fmt.Sprintf("progress:%s:%s", raw.UserEmail, raw.Source)
	if err := database.NewCacheBuilder(c.db.Cache.Progress, key).
		WithStruct(update).
		WithTTL(PROGRESS_KEY_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to store progress", "email", raw.UserEmail, "error", err)
	}

	if err := c.eventBus.PublishProgress(ctx, update); err != nil {
		log.Warn("failed to publish progress", "email", raw.UserEmail, "error", err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
