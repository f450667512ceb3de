// Command blog-gateway serves the blog API behind the request
// interception pipeline: token verification, response caching, and
// device session tracking.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pressgate/blog-gateway/pkg/auth"
	"github.com/pressgate/blog-gateway/pkg/cache"
	"github.com/pressgate/blog-gateway/pkg/devices"
	"github.com/pressgate/blog-gateway/pkg/kvstore"
	"github.com/pressgate/blog-gateway/pkg/logging"
	"github.com/pressgate/blog-gateway/pkg/userstore/sqlite"
)

type config struct {
	Addr          string        `env:"BLOG_GATEWAY_ADDR" envDefault:":8080"`
	RedisAddr     string        `env:"BLOG_GATEWAY_REDIS_ADDR" envDefault:"localhost:6379"`
	SessionSecret string        `env:"BLOG_GATEWAY_SESSION_SECRET,required"`
	UsersDBPath   string        `env:"BLOG_GATEWAY_USERS_DB_PATH" envDefault:"data/users.db"`
	CacheTTL      time.Duration `env:"BLOG_GATEWAY_CACHE_TTL" envDefault:"1h"`
	OpTimeout     time.Duration `env:"BLOG_GATEWAY_KVSTORE_OP_TIMEOUT" envDefault:"250ms"`
	LogLevel      string        `env:"BLOG_GATEWAY_LOG_LEVEL" envDefault:"info"`
	LogPretty     bool          `env:"BLOG_GATEWAY_LOG_PRETTY" envDefault:"false"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	users, err := sqlite.Open(cfg.UsersDBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.UsersDBPath).Msg("Failed to open user store")
	}
	defer users.Close()

	// The store is an optimization: a failed connect degrades the
	// gateway to uncached operation instead of aborting startup.
	storeCfg := kvstore.DefaultConfig(cfg.RedisAddr)
	storeCfg.OpTimeout = cfg.OpTimeout
	store := kvstore.New(storeCfg)
	if err := store.Connect(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Key-value store unavailable, serving uncached")
	}
	defer store.Close()

	maintenance := &auth.Maintenance{}
	verifier := auth.NewVerifier([]byte(cfg.SessionSecret), users, maintenance)
	tracker := devices.NewTracker(users)
	responseCache := cache.New(store,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithIdentity(auth.CallerID),
	)

	posts := newPostHandler(responseCache)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/posts",
		verifier.Middleware(responseCache.Handler(tracker.Middleware(posts))))
	mux.Handle("/admin/maintenance/enable",
		verifier.Middleware(auth.RequireAdmin(maintenanceHandler(maintenance, true))))
	mux.Handle("/admin/maintenance/disable",
		verifier.Middleware(auth.RequireAdmin(maintenanceHandler(maintenance, false))))

	logger.Info().Str("addr", cfg.Addr).Msg("Starting blog gateway")
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// maintenanceHandler toggles the process-wide maintenance switch.
func maintenanceHandler(m *auth.Maintenance, enable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if enable {
			m.Enable()
			log.Info().Msg("Maintenance mode enabled")
		} else {
			m.Disable()
			log.Info().Msg("Maintenance mode disabled")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
