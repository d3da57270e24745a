package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

// Options configures the NATS connection of an EventBus.
type Options struct {
	URL string
	// NKeySeed authenticates with an nkey user when set.
	NKeySeed string
	// ClientName is reported to the NATS server.
	ClientName string
	// QueueGroup load balances subscriptions across instances.
	QueueGroup string
	// AckWait is how long a handler has before a message is redelivered.
	AckWait time.Duration
}

// EventBus publishes and subscribes to JetStream subjects through Watermill.
// It satisfies message.Publisher and message.Subscriber.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS and builds a JetStream publisher and subscriber.
func NewEventBus(ctx context.Context, opts Options, logger *slog.Logger) (*EventBus, error) {
	natsOptions, err := connectOptions(opts)
	if err != nil {
		return nil, err
	}

	natsConn, err := nc.Connect(opts.URL, natsOptions...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	ackWait := opts.AckWait
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}

	jsConfig := nats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: false,
		SubscribeOptions: []nc.SubOpt{
			nc.DeliverAll(),
			nc.AckExplicit(),
		},
		TrackMsgId: true,
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         opts.URL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              opts.URL,
			QueueGroupPrefix: opts.QueueGroup,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   ackWait,
			NatsOptions:      natsOptions,
			Unmarshaler:      marshaler,
			JetStream:        jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &EventBus{
		publisher:  publisher,
		subscriber: subscriber,
		js:         js,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// connectOptions builds the NATS connection options, adding nkey
// authentication when a seed is configured.
func connectOptions(opts Options) ([]nc.Option, error) {
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(10 * time.Second),
		nc.ReconnectWait(time.Second),
	}
	if opts.ClientName != "" {
		options = append(options, nc.Name(opts.ClientName))
	}
	if opts.NKeySeed == "" {
		return options, nil
	}

	kp, err := nkeys.FromSeed([]byte(opts.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	if !nkeys.IsValidPublicUserKey(pub) {
		return nil, errors.New("nkey seed is not a user seed")
	}
	return append(options, nc.Nkey(pub, kp.Sign)), nil
}

// Publish publishes messages to topic.
func (eb *EventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message",
			slog.String("subject", topic),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe subscribes to topic.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	eb.logger.InfoContext(ctx, "Subscription started", slog.String("subject", topic))
	return messages, nil
}

// JetStream returns the JetStream context of the bus connection.
func (eb *EventBus) JetStream() jetstream.JetStream {
	return eb.js
}

// Conn returns the underlying NATS connection.
func (eb *EventBus) Conn() *nc.Conn {
	return eb.natsConn
}

// Close closes all NATS and Watermill resources.
func (eb *EventBus) Close() error {
	var errs []error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", "error", err)
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}
