package repository

import (
	"context"

	"FlowScan/internal/domain/models"
	pkgkafka "FlowScan/pkg/kafka"
)

// Producer is the part of pkg/kafka.Producer the sink needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

var _ Producer = (*pkgkafka.Producer)(nil)

// KafkaTopics names where each kind of output goes.
type KafkaTopics struct {
	Flow    string // one message per symbol, keyed by symbol
	Signals string // one message per confirmed pattern, keyed by symbol
	Reports string // whole cycle reports, keyed by cycle id
}

// KafkaSink publishes cycle output to Kafka.
type KafkaSink struct {
	producer Producer
	topics   KafkaTopics
}

func NewKafkaSink(producer Producer, topics KafkaTopics) *KafkaSink {
	return &KafkaSink{producer: producer, topics: topics}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) PublishFlowReport(ctx context.Context, r *models.FlowReport) error {
	rows := FlowRows(r)
	msgs := make([]pkgkafka.Message, len(rows))
	for i, row := range rows {
		msgs[i] = pkgkafka.Message{Key: []byte(row.Symbol), Value: row}
	}
	if err := s.producer.PublishBatch(ctx, s.topics.Flow, msgs); err != nil {
		return err
	}
	return s.producer.Publish(ctx, s.topics.Reports, []byte(r.CycleID), r)
}

func (s *KafkaSink) PublishPatternSignal(ctx context.Context, sig models.PatternSignal) error {
	return s.producer.Publish(ctx, s.topics.Signals, []byte(sig.Symbol), sig)
}

func (s *KafkaSink) PublishPatternReport(ctx context.Context, r *models.PatternReport) error {
	return s.producer.Publish(ctx, s.topics.Reports, []byte(r.CycleID), r)
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
