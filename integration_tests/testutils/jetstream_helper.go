package testutils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ResetJetStreamState purges the streams and deletes their consumers.
func (env *TestEnvironment) ResetJetStreamState(ctx context.Context, streamNames ...string) error {
	if env.JetStream == nil {
		return errors.New("JetStream not initialized")
	}

	for _, name := range streamNames {
		stream, err := env.JetStream.Stream(ctx, name)
		if err != nil {
			if errors.Is(err, jetstream.ErrStreamNotFound) {
				continue
			}
			return fmt.Errorf("failed to access stream %s: %w", name, err)
		}
		if err := stream.Purge(ctx); err != nil {
			return fmt.Errorf("failed to purge stream %s: %w", name, err)
		}

		consumers := stream.ListConsumers(ctx)
		for ci := range consumers.Info() {
			if ci == nil {
				continue
			}
			if err := stream.DeleteConsumer(ctx, ci.Name); err != nil {
				log.Printf("Failed to delete consumer %q from stream %q: %v", ci.Name, name, err)
			}
		}
		if err := consumers.Err(); err != nil {
			log.Printf("Error listing consumers for stream %q: %v", name, err)
		}
	}
	return nil
}

// FetchStreamMessages reads up to count messages published on subject,
// waiting at most timeout. The stream is read from the beginning.
func (env *TestEnvironment) FetchStreamMessages(ctx context.Context, stream, subject string, count int, timeout time.Duration) ([]jetstream.Msg, error) {
	consumer, err := env.JetStream.OrderedConsumer(ctx, stream, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subject},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ordered consumer: %w", err)
	}

	var out []jetstream.Msg
	deadline := time.Now().Add(timeout)
	for len(out) < count {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		batch, err := consumer.Fetch(count-len(out), jetstream.FetchMaxWait(remaining))
		if err != nil {
			return out, fmt.Errorf("failed to fetch from %s: %w", subject, err)
		}
		for msg := range batch.Messages() {
			out = append(out, msg)
		}
		if err := batch.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
			return out, err
		}
	}
	return out, nil
}

// WaitFor polls check until it succeeds or timeout elapses.
func WaitFor(timeout, interval time.Duration, check func() error) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = check(); lastErr == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("condition not met after %v: %w", timeout, lastErr)
}
