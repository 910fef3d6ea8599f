// Package kafka mirrors relay broadcasts onto a Kafka topic so downstream
// consumers (archival, analytics) can follow the event stream without holding
// a dashboard connection. The in-process bus stays authoritative; the mirror
// is strictly fire-and-forget from the relay's point of view.
package kafka

import (
	"context"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Mirror wraps a kafka-go Writer with relay defaults. Messages are keyed by
// broadcast topic so all events of one kind land on the same partition,
// preserving their publish order for consumers.
type Mirror struct {
	writer *kafkago.Writer
}

type MirrorConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	Compression  kafkago.Compression
	RequiredAcks kafkago.RequiredAcks
	MaxAttempts  int
}

// NewMirror constructs a Mirror from the given configuration.
func NewMirror(cfg MirrorConfig) *Mirror {
	return &Mirror{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout,
			RequiredAcks: cfg.RequiredAcks,
			Compression:  cfg.Compression,
			MaxAttempts:  cfg.MaxAttempts,
		},
	}
}

// PublishEvent mirrors one broadcast: topic is the dashboard event name
// ("new-alert", "new-recording") and payload its JSON-encoded body.
func (m *Mirror) PublishEvent(ctx context.Context, topic string, payload []byte) error {
	return m.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(topic),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(topic)},
		},
	})
}

// Close flushes and closes the underlying writer.
func (m *Mirror) Close(ctx context.Context) error {
	return m.writer.Close()
}

// CompressionFromString maps textual codec to kafka-go value.
func CompressionFromString(name string) kafkago.Compression {
	switch strings.ToLower(name) {
	case "gzip":
		return kafkago.Gzip
	case "snappy":
		return kafkago.Snappy
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	default:
		return kafkago.Snappy
	}
}
