package scoringrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
	scoringhandlers "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/handlers"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"

	// replyToMetadataKey names the metadata that overrides a handler's reply topic.
	replyToMetadataKey = "reply_to"
)

// ScoringRouter handles Watermill handler registration for scoring events.
type ScoringRouter struct {
	logger         *slog.Logger
	router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewScoringRouter creates a new ScoringRouter. Router metrics are registered
// on registry unless it is nil or APP_ENV=test.
func NewScoringRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *ScoringRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && os.Getenv(TestEnvironmentFlag) != TestEnvironmentValue {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &builder
	}
	return &ScoringRouter{
		logger:         logger,
		router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds middleware and registers the scoring handlers.
func (r *ScoringRouter) Configure(_ context.Context, handlers scoringhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware")
	}

	r.router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *ScoringRouter) registerHandlers(handlers scoringhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering scoring module handlers",
		slog.String("game_updated_subject", scoringevents.GameUpdatedV1),
		slog.String("rescore_requested_subject", scoringevents.RescoreRequestedV1),
	)

	registerHandler(deps, scoringevents.GameUpdatedV1, handlers.HandleGameUpdated)
	registerHandler(deps, scoringevents.RescoreRequestedV1, handlers.HandleRescoreRequested)

	r.logger.Info("Scoring module handlers registered successfully")
}

// registerHandler registers a typed handler. Each result is published to
// its own topic.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "scoring." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		nil,
		typedHandler(handlerName, deps, handler),
	)
}

// typedHandler decodes the payload into T, runs handler and publishes its results.
func typedHandler[T any](
	handlerName string,
	deps handlerDeps,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := deps.tracer.Start(msg.Context(), handlerName)
		defer span.End()

		correlationID := middleware.MessageCorrelationID(msg)
		ctx = scoringevents.WithCorrelationID(ctx, correlationID)
		if replyTo := msg.Metadata.Get(replyToMetadataKey); replyTo != "" {
			ctx = context.WithValue(ctx, handlerwrapper.CtxKeyReplyTo, replyTo)
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// Undecodable payloads are dropped, not retried.
			deps.logger.ErrorContext(ctx, "Failed to decode message payload",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.String("correlation_id", correlationID),
				attr.Error(err),
			)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			deps.logger.ErrorContext(ctx, "Error processing message",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil, err
		}

		for _, result := range results {
			if result.Topic == "" {
				deps.logger.ErrorContext(ctx, "Handler result has no topic - MESSAGE DROPPED",
					attr.String("handler", handlerName),
					attr.String("correlation_id", correlationID),
				)
				continue
			}
			out, err := scoringevents.NewMessage(ctx, result.Payload)
			if err != nil {
				return nil, fmt.Errorf("failed to build %s message: %w", result.Topic, err)
			}
			deps.logger.InfoContext(ctx, "publishing message",
				attr.String("topic", result.Topic),
				attr.String("handler", handlerName),
				attr.String("correlation_id", correlationID),
			)
			if err := deps.publisher.Publish(result.Topic, out); err != nil {
				return nil, fmt.Errorf("failed to publish to %s: %w", result.Topic, err)
			}
		}
		return nil, nil
	}
}

// Close shuts down the router.
func (r *ScoringRouter) Close() error {
	return r.router.Close()
}
