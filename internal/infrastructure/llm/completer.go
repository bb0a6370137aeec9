package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// Completer generates chat completions through the factory's default
// provider, retrying a failed call once after a backoff.
type Completer struct {
	factory  *EinoFactory
	provider string
	backoff  time.Duration
}

// NewCompleter creates a completer on the default provider.
func NewCompleter(factory *EinoFactory, cfg *config.LLMConfig) *Completer {
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Completer{
		factory:  factory,
		provider: cfg.DefaultProvider,
		backoff:  backoff,
	}
}

// Complete sends the system prompt, prior turns and the user message to
// the chat model and returns the assistant text.
func (c *Completer) Complete(ctx context.Context, system string, history []entity.Turn, user string) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Complete",
		trace.WithAttributes(
			attribute.String("llm.provider", c.provider),
			attribute.Int("llm.history_turns", len(history)),
		))
	defer span.End()

	chatModel, err := c.factory.Default(ctx)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(system))
	for _, t := range history {
		switch t.Role {
		case entity.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(t.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(t.Content))
		}
	}
	messages = append(messages, schema.UserMessage(user))

	resp, err := c.generate(ctx, chatModel, messages)
	if err != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.backoff):
		}
		span.AddEvent("retry")
		resp, err = c.generate(ctx, chatModel, messages)
	}
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(c.provider).
			Add(float64(resp.ResponseMeta.Usage.TotalTokens))
	}

	return resp.Content, nil
}

func (c *Completer) generate(ctx context.Context, chatModel model.BaseChatModel, messages []*schema.Message) (*schema.Message, error) {
	start := time.Now()
	resp, err := chatModel.Generate(ctx, messages)
	metrics.LLMCallDuration.WithLabelValues(c.provider).
		Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(c.provider, status).Inc()

	return resp, err
}
