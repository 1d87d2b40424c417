package session

import (
	"context"
	"time"

	"github.com/yhkim-dev/member-portal/internal/common/constants"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/observability/metrics"
	"github.com/yhkim-dev/member-portal/internal/session/repository"
)

// StartRevokedSessionCleanup periodically purges denylist entries whose
// tokens have expired on their own.
func StartRevokedSessionCleanup(ctx context.Context, repo repository.RevokedSessionRepository, log *logger.Logger) {
	ticker := time.NewTicker(constants.RevokedSessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Errorf("revoked session cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.RevokedSessionsCleanupDeleted.Add(float64(deleted))
				log.Infof("revoked session cleanup: deleted %d expired entries", deleted)
			}
		}
	}
}
