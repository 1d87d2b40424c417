package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yhkim-dev/member-portal/internal/common/constants"
)

// TraceIDMiddleware attaches an inbound X-Trace-ID (or a fresh uuid) to the
// request context so log entries and error envelopes can correlate.
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
