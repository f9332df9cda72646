// Package kafka publishes verification code requests to a Kafka topic. A
// downstream mailer owns code generation and delivery.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/email"
)

// EventVerificationCodeRequested is the event type written to the topic.
const EventVerificationCodeRequested = "verification_code_requested"

// CodeRequest is the message value.
type CodeRequest struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requested_at"`
}

// Notifier implements ports.Notifier on top of a franz-go client.
type Notifier struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// NewNotifier connects to brokers. Records are keyed by session so every
// request of one session lands on the same partition.
func NewNotifier(brokers []string, topic string, opts ...Option) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka notifier requires at least one broker")
	}
	if topic == "" {
		return nil, errors.New("kafka notifier requires a topic")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	n := &Notifier{
		client: client,
		topic:  topic,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (n *Notifier) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(n.client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, n.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", n.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// SendVerificationCode publishes a code request and waits for the broker
// acknowledgement.
func (n *Notifier) SendVerificationCode(ctx context.Context, sessionID id.SessionID, addr string) error {
	if !email.Valid(addr) {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required to send a verification code")
	}
	payload, err := json.Marshal(CodeRequest{
		Type:        EventVerificationCodeRequested,
		SessionID:   sessionID.String(),
		Email:       addr,
		RequestedAt: n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode code request: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(sessionID.String()),
		Value: payload,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to publish verification code request")
	}
	n.logger.InfoContext(ctx, "verification code requested",
		"session_id", sessionID.String(),
		"topic", n.topic,
		"partition", record.Partition,
		"offset", record.Offset,
	)
	return nil
}

// Close flushes and closes the client.
func (n *Notifier) Close() {
	n.client.Close()
}
