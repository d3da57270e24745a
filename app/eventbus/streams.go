package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStream creates the stream, or adds any subjects it is missing.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string, subjects []string, logger *slog.Logger) error {
	stream, err := js.Stream(ctx, name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      name,
			Subjects:  subjects,
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
		})
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream", slog.String("stream", name), slog.Any("error", err))
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.InfoContext(ctx, "Created JetStream stream", slog.String("stream", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	merged, changed := mergeSubjects(info.Config.Subjects, subjects)
	if !changed {
		logger.InfoContext(ctx, "Stream already exists with subjects", slog.String("stream", name))
		return nil
	}

	info.Config.Subjects = merged
	if _, err := js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream %s with new subjects: %w", name, err)
	}
	logger.InfoContext(ctx, "Stream updated with new subjects", slog.String("stream", name), slog.Any("subjects", merged))
	return nil
}

// EnsureStream creates or updates a stream on the bus connection.
func (eb *EventBus) EnsureStream(ctx context.Context, name string, subjects []string) error {
	return EnsureStream(ctx, eb.js, name, subjects, eb.logger)
}

// mergeSubjects appends the wanted subjects missing from existing.
func mergeSubjects(existing, wanted []string) ([]string, bool) {
	out := slices.Clone(existing)
	changed := false
	for _, s := range wanted {
		if !slices.Contains(out, s) {
			out = append(out, s)
			changed = true
		}
	}
	return out, changed
}
