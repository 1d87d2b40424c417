package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_issued_total",
			Help: "Total number of session tokens issued",
		},
	)

	SessionsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_revoked_total",
			Help: "Total number of session tokens revoked",
		},
	)

	RevokedSessionsCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revoked_sessions_cleanup_deleted_total",
			Help: "Total number of expired revoked sessions deleted during cleanup",
		},
	)

	DuplicateChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_checks_total",
			Help: "Total number of duplicate pre-flight checks by field and result",
		},
		[]string{"field", "result"},
	)

	ProfileUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of profile updates by outcome",
		},
		[]string{"outcome"},
	)
)
