package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestProducer(t *testing.T, async *fakeAsyncProducer) *Producer {
	t.Helper()

	return &Producer{
		producer: async,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "careertracker"},
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}
}

func TestPublishSecurityEvent(t *testing.T) {
	async := newFakeAsyncProducer()
	producer := newTestProducer(t, async)

	publisher := NewAuditPublisher(producer, config.AppSettings{
		Name: "career-tracker-gate",
		Env:  "test",
	}, zaptest.NewLogger(t))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := domain.SecurityEvent{
		EventID:   "evt-1",
		Key:       "198.51.100.7",
		Kind:      domain.SecurityEventLockout,
		Timestamp: ts,
		Path:      "/api/v1/auth/login",
		IPAddress: "198.51.100.7",
		Metadata:  map[string]any{"gate": "login"},
	}

	if err := publisher.PublishSecurityEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishSecurityEvent returned error: %v", err)
	}

	var message *sarama.ProducerMessage
	select {
	case message = <-async.input:
	default:
		t.Fatal("expected a message on the producer input channel")
	}

	if message.Topic != "careertracker.gate.lockout" {
		t.Fatalf("expected prefixed topic, got %s", message.Topic)
	}

	key, err := message.Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "198.51.100.7" {
		t.Fatalf("expected partition key 198.51.100.7, got %s", key)
	}

	value, err := message.Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}

	var envelope struct {
		EventID   string    `json:"event_id"`
		EventType string    `json:"event_type"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
		Payload   struct {
			Key       string `json:"key"`
			Kind      string `json:"kind"`
			Path      string `json:"path"`
			IPAddress string `json:"ip_address"`
		} `json:"payload"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if envelope.EventID != "evt-1" {
		t.Fatalf("expected event id evt-1, got %s", envelope.EventID)
	}
	if envelope.EventType != domain.SecurityEventLockout {
		t.Fatalf("expected event type %s, got %s", domain.SecurityEventLockout, envelope.EventType)
	}
	if envelope.Version != "1.0" {
		t.Fatalf("expected version 1.0, got %s", envelope.Version)
	}
	if !envelope.Timestamp.Equal(ts) {
		t.Fatalf("expected timestamp %v, got %v", ts, envelope.Timestamp)
	}
	if envelope.Payload.Key != "198.51.100.7" || envelope.Payload.Kind != domain.SecurityEventLockout {
		t.Fatalf("unexpected payload %+v", envelope.Payload)
	}
	if envelope.Metadata["service"] != "career-tracker-gate" || envelope.Metadata["environment"] != "test" {
		t.Fatalf("unexpected metadata %v", envelope.Metadata)
	}
}

func TestPublishSecurityEventFillsIdentifiers(t *testing.T) {
	async := newFakeAsyncProducer()
	producer := newTestProducer(t, async)

	publisher := NewAuditPublisher(producer, config.AppSettings{Name: "gate", Env: "test"}, zaptest.NewLogger(t))

	event := domain.SecurityEvent{
		Key:  "key",
		Kind: domain.SecurityEventCSRFRejected,
	}

	if err := publisher.PublishSecurityEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishSecurityEvent returned error: %v", err)
	}

	message := <-async.input
	value, err := message.Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}

	var envelope struct {
		EventID   string    `json:"event_id"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if envelope.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if envelope.Timestamp.IsZero() {
		t.Fatal("expected generated timestamp")
	}
}

func TestPublishSecurityEventHonorsContext(t *testing.T) {
	async := newFakeAsyncProducer()
	// Fill the buffered channel so the publish blocks.
	async.input <- &sarama.ProducerMessage{}

	producer := newTestProducer(t, async)
	publisher := NewAuditPublisher(producer, config.AppSettings{}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishSecurityEvent(ctx, domain.SecurityEvent{Key: "key", Kind: domain.SecurityEventLockout})
	if err == nil {
		t.Fatal("expected context error when producer input is full")
	}
}

func TestTopicName(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "careertracker"}}

	if got := producer.TopicName("gate.lockout"); got != "careertracker.gate.lockout" {
		t.Fatalf("expected prefixed topic, got %s", got)
	}
	if got := producer.TopicName("careertracker.gate.lockout"); got != "careertracker.gate.lockout" {
		t.Fatalf("expected idempotent prefixing, got %s", got)
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("gate.lockout"); got != "gate.lockout" {
		t.Fatalf("expected unprefixed topic, got %s", got)
	}
}
