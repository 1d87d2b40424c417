package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/yhkim-dev/member-portal/internal/auth/http"
	authservice "github.com/yhkim-dev/member-portal/internal/auth/service"
	"github.com/yhkim-dev/member-portal/internal/common/clock"
	"github.com/yhkim-dev/member-portal/internal/common/config"
	commoncrypto "github.com/yhkim-dev/member-portal/internal/common/crypto"
	"github.com/yhkim-dev/member-portal/internal/common/db"
	commonhttp "github.com/yhkim-dev/member-portal/internal/common/http"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	srv "github.com/yhkim-dev/member-portal/internal/common/server"
	memberhttp "github.com/yhkim-dev/member-portal/internal/member/http"
	memberrepo "github.com/yhkim-dev/member-portal/internal/member/repository"
	memberservice "github.com/yhkim-dev/member-portal/internal/member/service"
	"github.com/yhkim-dev/member-portal/internal/session"
	sessionrepo "github.com/yhkim-dev/member-portal/internal/session/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "member", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	db.StartPoolMetrics(pool, 0)

	repo := memberrepo.NewPgRepository(pool)
	revokedRepo := sessionrepo.NewPgRevokedSessionRepository(pool)
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	sessions := session.NewService(session.ServiceDeps{
		Revoked: revokedRepo,
		IDGen:   idGenerator,
		Clock:   clk,
		Log:     log,
	}, cfg.JWTSecret, cfg.SessionTTL)

	members := memberservice.NewMemberService(memberservice.MemberServiceDeps{
		Repo:   repo,
		Hasher: hasher,
		IDGen:  idGenerator,
		Clock:  clk,
		Log:    log,
	}, cfg.PageSize)

	auth := authservice.NewAuthService(repo, hasher, sessions, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go session.StartRevokedSessionCleanup(ctx, revokedRepo, log)

	mux := http.NewServeMux()
	mux.Handle("/", memberhttp.NewHandler(members, sessions, cfg.RequestTimeout, log))
	mux.Handle("/api/auth/", authhttp.NewHandler(auth, cfg.RequestTimeout, log))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	finalHandler := rateLimitMiddleware(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("member service: stopping cleanup goroutine")
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "member", shutdownHooks)
}
