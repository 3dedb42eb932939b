package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securedocs/securedocs/backend/go-services/handlers"
	"github.com/securedocs/securedocs/backend/go-services/internal/config"
	"github.com/securedocs/securedocs/backend/go-services/internal/database"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/handler"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/repository"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/service"
	"github.com/securedocs/securedocs/backend/go-services/internal/ledger"
	"github.com/securedocs/securedocs/backend/go-services/internal/oidc"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/securedocs/securedocs/backend/go-services/internal/signers"
	"github.com/securedocs/securedocs/backend/go-services/internal/storage"
	"github.com/securedocs/securedocs/backend/go-services/pkg/logger"
	"github.com/securedocs/securedocs/backend/go-services/pkg/metrics"
	"github.com/securedocs/securedocs/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: request ids + logging + recovery
	r.Use(middleware.RequestIDMiddleware(), gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate limiter and the receipt journal can use it
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := importedRedis.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Submission receipt journal: Redis-backed when available, in-memory otherwise.
	var journal *receipts.Service
	if importedRedis != nil {
		journal = receipts.NewService(receipts.NewRedisRepository(importedRedis, "submission:", cfg.Receipts.Retention))
		logger.Infof("Using Redis for submission receipts (retention=%s)", cfg.Receipts.Retention)
	} else {
		journal = receipts.NewService(receipts.NewMemoryRepository())
		logger.Warnf("Redis unavailable; submission receipts held in memory only")
	}

	// Document registry: Mongo-backed when configured, in-memory otherwise.
	ctx := context.Background()
	var repo repository.Repository
	var directory *signers.Service
	var mongoUp bool
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			repo = repository.NewMongoRepo(db.Collection("documents"))
			directory = signers.NewService(signers.NewMongoProfileRepository(db.Collection("signer_profiles")))
			mongoUp = true
		}
	}
	if repo == nil {
		repo = repository.NewMemoryRepo()
		directory = signers.NewService(signers.NewMemoryProfileRepository())
		logger.Warnf("MongoDB unavailable; documents held in memory only")
	}

	// Content store (MinIO). Optional: upload/download endpoints answer 503 without it.
	var contentStore *storage.ContentStore
	mcfg := storage.LoadMinIOConfig()
	if mcfg.Endpoint != "" {
		cs, err := storage.NewContentStore(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize content store (%s): %v", mcfg.Endpoint, err)
		} else {
			contentStore = cs
			logger.Infof("Content store ready: %s bucket=%s", mcfg.Endpoint, mcfg.Bucket)
		}
	}

	// Identity provider: OIDC verifier when configured, otherwise the insecure
	// verifier behind ALLOW_INSECURE_TOKEN for integration tests.
	var verifier middleware.Verifier
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		val := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")))
		if val == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// Core workflow wiring: executor commits against the registry, the facade
	// validates and submits, the handler speaks HTTP.
	exec := ledger.NewLocalExecutor(repo, journal)
	svc := service.New(repo, exec)
	docHandler := handler.New(svc, directory, journal, contentStore)

	var authRequired gin.HandlerFunc
	if verifier != nil {
		authRequired = middleware.AuthMiddleware(verifier)
	} else {
		logger.Warnf("no token verifier configured; mutating endpoints will reject all requests")
		authRequired = func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token verifier configured"})
		}
	}
	docHandler.Register(r, authRequired)

	// Dev token endpoint (no-op unless ALLOW_INSECURE_TOKEN=true)
	handlers.NewAuthHandler(cfg).Register(r.Group("/"))

	// Swagger UI + JSON for API documentation
	handlers.RegisterSwagger(r)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// registry readiness: Mongo when configured, otherwise the memory repo counts
		if cfg.MongoDB.URI != "" {
			deps["mongodb"] = mongoUp
			if !mongoUp {
				ready = false
			}
		} else {
			deps["mongodb"] = true
		}

		// verifier readiness: something must be able to vouch for callers
		deps["verifier"] = verifier != nil
		if verifier == nil {
			ready = false
		}

		// Redis readiness when used for rate-limiter or receipts
		if cfg.Redis.Host != "" {
			deps["redis"] = importedRedis != nil
			if cfg.RateLimit.UseRedis && importedRedis == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		deps["content_store"] = contentStore != nil

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting document service on %s (env=%s)", addr, cfg.Server.Environment)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
