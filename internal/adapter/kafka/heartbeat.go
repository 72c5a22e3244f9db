// Package kafka consumes device location heartbeats.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	recordAttempts = 3
	recordDelay    = 200 * time.Millisecond
	minBackoff     = time.Second
	maxBackoff     = 30 * time.Second
)

var errMalformedHeartbeat = errors.New("malformed heartbeat")

// Heartbeat is the message published by devices.
type Heartbeat struct {
	ActorID   uuid.UUID `json:"actor_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type HeartbeatRecorder interface {
	RecordHeartbeat(ctx context.Context, actorID uuid.UUID, lat, lon float64) (models.LocationSample, error)
}

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func NewReader(cfg ReaderConfig) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

type HeartbeatConsumer struct {
	reader   MessageReader
	topic    string
	recorder HeartbeatRecorder
	l        logger.Logger
	sleep    func(ctx context.Context, d time.Duration)
}

func NewHeartbeatConsumer(reader MessageReader, topic string, recorder HeartbeatRecorder, l logger.Logger) *HeartbeatConsumer {
	return &HeartbeatConsumer{
		reader:   reader,
		topic:    topic,
		recorder: recorder,
		l:        l,
		sleep:    sleepCtx,
	}
}

// Run consumes until ctx is cancelled. Every fetched message is committed once handled,
// malformed and out-of-range heartbeats included, so one bad device cannot stall the partition.
func (c *HeartbeatConsumer) Run(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, "consume_heartbeats")
	c.l.Info(ctx, "heartbeat consumer started", "topic", c.topic)

	backoff := minBackoff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.l.Info(ctx, "heartbeat consumer stopped")
				return nil
			}
			c.l.Error(wrap.WithAction(ctx, types.ActionKafkaConsumeFailed), "failed to fetch message", err, "backoff", backoff.String())
			c.sleep(ctx, backoff)
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		err = c.handle(ctx, msg)
		metrics.RecordKafkaConsume(c.topic, err)
		if err != nil {
			c.l.Error(wrap.WithAction(ctx, types.ActionKafkaConsumeFailed), "failed to handle heartbeat", err,
				"partition", msg.Partition, "offset", msg.Offset)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.l.Error(wrap.WithAction(ctx, types.ActionKafkaConsumeFailed), "failed to commit message", err)
		}
	}
}

func (c *HeartbeatConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	hb, err := DecodeHeartbeat(msg.Value)
	if err != nil {
		metrics.RecordHeartbeat("kafka", err)
		return err
	}

	delay := recordDelay
	for attempt := 1; ; attempt++ {
		_, err = c.recorder.RecordHeartbeat(ctx, hb.ActorID, hb.Latitude, hb.Longitude)
		// only storage failures are worth another try
		if err == nil || !errors.Is(err, types.ErrDatabaseFailed) || attempt == recordAttempts || ctx.Err() != nil {
			break
		}
		c.sleep(ctx, delay)
		delay *= 2
	}
	metrics.RecordHeartbeat("kafka", err)
	return err
}

// DecodeHeartbeat parses a message value. Coordinates are checked later by the registry.
func DecodeHeartbeat(data []byte) (Heartbeat, error) {
	var hb Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		return Heartbeat{}, fmt.Errorf("%w: %w", errMalformedHeartbeat, err)
	}
	if hb.ActorID == uuid.Nil {
		return Heartbeat{}, fmt.Errorf("%w: missing actor_id", errMalformedHeartbeat)
	}
	return hb, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
