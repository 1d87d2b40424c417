package http

import (
	"net/http"

	"github.com/yhkim-dev/member-portal/internal/common/httpmetrics"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)

	return recovery(TraceIDMiddleware(metrics.Wrap(handler)))
}
