// Package port defines the interfaces (ports) for external
// dependencies, decoupling the service layer from concrete adapters.
package port

import (
	"context"

	"github.com/gspc/statement-insights/internal/domain"
)

// ChatStreamer streams an assistant answer for one chat exchange.
// onDelta is invoked once per text chunk as it arrives; returning an
// error from it aborts the stream. The returned usage may be partial
// when the stream fails midway.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req *domain.ChatRequest, onDelta func(text string) error) (*domain.TokenUsage, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
