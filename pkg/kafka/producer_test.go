package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithCompression("zstd"),
		WithMaxAttempts(7),
		WithHashByKey(false),
		WithRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	defer p.Close()

	if p.writer.Compression != kafka.Zstd || p.writer.MaxAttempts != 7 {
		t.Fatalf("options not applied: %+v", p.writer)
	}
	if _, ok := p.writer.Balancer.(*kafka.LeastBytes); !ok {
		t.Fatalf("expected least-bytes balancer")
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"rank": 1})
	if err != nil || string(b) != `{"rank":1}` {
		t.Fatalf("json encode: %s %v", b, err)
	}
	b, _ = encode("raw")
	if string(b) != "raw" {
		t.Fatalf("string passthrough: %s", b)
	}
	if _, err := encode(make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}
