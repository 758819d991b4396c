package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/config"
	"github.com/gspc/statement-insights/internal/domain"
	"github.com/gspc/statement-insights/internal/service"
)

// chatHandler streams the assistant answer as plain text. Chunks are
// flushed as they arrive; a failure after the first chunk can no longer
// change the status code, so it is appended inline as an error marker.
func chatHandler(svc *service.ChatService, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "chatHandler")
		defer span.End()

		if !cfg.HasAnthropicKey() {
			handleServiceError(w, &domain.ErrMissingCredential{Name: "ANTHROPIC_API_KEY"}, logger)
			return
		}

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		started := false
		err := svc.Stream(ctx, &req, func(text string) error {
			if !started {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("Cache-Control", "no-cache")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			if _, err := io.WriteString(w, text); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err != nil {
			if !started {
				handleServiceError(w, err, logger)
				return
			}
			// Headers are gone; surface the failure inside the stream.
			fmt.Fprintf(w, "\n\n[error] %s", err.Error())
			flusher.Flush()
			return
		}
		if !started {
			// Empty completion: still a successful plain-text response.
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
		}
	}
}
