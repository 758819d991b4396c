package handler

import (
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/gspc/statement-insights/internal/service"
)

// analyzeHandler accepts a multipart CSV upload under the "file" field
// and returns the full statement report. A statement whose every row
// fails to parse comes back as 400 with the row errors listed.
func analyzeHandler(svc *service.StatementService, maxUploadBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "analyzeHandler")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "multipart form with a 'file' field is required")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
			return
		}
		defer file.Close()

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int64("upload.size", header.Size),
		)

		raw, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unable to read uploaded file")
			return
		}

		report, err := svc.Analyze(ctx, string(raw))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
