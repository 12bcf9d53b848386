package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/resilience"
)

// KafkaSource reads JSON documents from one topic partition, from the first
// retained offset up to the high watermark at the time Each is called.
type KafkaSource struct {
	cfg       config.KafkaConfig
	topic     string
	partition int
}

func NewKafkaSource(cfg config.KafkaConfig, topic string, partition int) *KafkaSource {
	return &KafkaSource{cfg: cfg, topic: topic, partition: partition}
}

func (s *KafkaSource) Each(ctx context.Context, fn func(Document) error) error {
	_, err := kafka.Drain(ctx, s.cfg, s.topic, s.partition, handleMessage(fn))
	return err
}

func handleMessage(fn func(Document) error) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		doc, err := kafka.DecodeJSON[Document](value)
		if err != nil {
			return resilience.Permanent(fmt.Errorf("message key %q: %w", key, err))
		}
		return fn(doc)
	}
}
