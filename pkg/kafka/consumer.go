// Package kafka reads Kafka partitions with segmentio/kafka-go. Corpora
// published to a topic are read back as a finite snapshot: everything from
// the first retained offset up to the high watermark observed at start.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Drain reads one partition of topic from its first offset up to the high
// watermark that existed when Drain was called, passing every message to
// handler. Messages produced afterwards are not read. It returns the number
// of messages handled.
func Drain(ctx context.Context, cfg config.KafkaConfig, topic string, partition int, handler MessageHandler) (int, error) {
	if len(cfg.Brokers) == 0 {
		return 0, fmt.Errorf("%w: no kafka brokers configured", apperrors.ErrUnavailable)
	}
	log := logger.WithComponent("kafka-drain").With("topic", topic, "partition", partition)
	dialer := &kafka.Dialer{Timeout: cfg.DialTimeout}

	conn, err := dialer.DialLeader(ctx, "tcp", cfg.Brokers[0], topic, partition)
	if err != nil {
		return 0, fmt.Errorf("%w: dialing partition leader: %w", apperrors.ErrUnavailable, err)
	}
	first, last, err := conn.ReadOffsets()
	conn.Close()
	if err != nil {
		return 0, fmt.Errorf("reading partition offsets: %w", err)
	}
	log.Info("draining partition", "first_offset", first, "high_watermark", last)
	if last <= first {
		return 0, nil
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   cfg.Brokers,
		Topic:     topic,
		Partition: partition,
		MinBytes:  1,
		MaxBytes:  10e6,
		Dialer:    dialer,
	})
	defer r.Close()
	if err := r.SetOffset(first); err != nil {
		return 0, fmt.Errorf("seeking to offset %d: %w", first, err)
	}

	handled := 0
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			return handled, fmt.Errorf("reading message after %d handled: %w", handled, err)
		}
		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			return handled, fmt.Errorf("handling offset %d: %w", msg.Offset, err)
		}
		handled++
		if msg.Offset+1 >= last {
			log.Info("partition drained", "messages", handled)
			return handled, nil
		}
	}
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
