package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/infra/observability"
	"github.com/gspc/statement-insights/internal/port"
)

var chatTracer = otel.Tracer("service/chat")

// ChatService fronts the streaming assistant. It validates the
// exchange, delegates to the streamer port and records token usage.
// The assistant answers only from the report context it is handed; the
// pipeline never depends on it.
type ChatService struct {
	streamer port.ChatStreamer
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewChatService creates the chat service with dependencies injected.
func NewChatService(streamer port.ChatStreamer, metrics *observability.Metrics, logger *zap.Logger) *ChatService {
	return &ChatService{streamer: streamer, metrics: metrics, logger: logger}
}

// Stream forwards the message plus report context to the assistant and
// relays text chunks to onDelta as they arrive. Mid-stream errors are
// returned after any chunks already delivered.
func (s *ChatService) Stream(ctx context.Context, req *domain.ChatRequest, onDelta func(text string) error) error {
	ctx, span := chatTracer.Start(ctx, "ChatService.Stream")
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return &domain.ErrValidation{Field: "message", Message: "message is required"}
	}

	start := time.Now()
	usage, err := s.streamer.StreamChat(ctx, req, onDelta)
	s.metrics.RecordStageDuration("chat", time.Since(start))

	if usage != nil {
		s.metrics.RecordTokens(usage.InputTokens, usage.OutputTokens)
	}
	if err != nil {
		s.logger.Error("chat stream failed", zap.Error(err))
		return err
	}
	return nil
}
