package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/claimsaver/go-services/handlers"
	"github.com/claimsaver/go-services/internal/calendar"
	"github.com/claimsaver/go-services/internal/claims"
	"github.com/claimsaver/go-services/internal/config"
	"github.com/claimsaver/go-services/internal/database"
	"github.com/claimsaver/go-services/internal/documents"
	"github.com/claimsaver/go-services/internal/esign"
	"github.com/claimsaver/go-services/internal/identity"
	"github.com/claimsaver/go-services/internal/mailer"
	"github.com/claimsaver/go-services/internal/oidc"
	"github.com/claimsaver/go-services/internal/payments"
	"github.com/claimsaver/go-services/internal/storage"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/internal/webhooks"
	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/claimsaver/go-services/pkg/metrics"
	"github.com/claimsaver/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: clerk=%v mongo=%v redis=%v stripe=%v",
		cfg.Clerk.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Stripe.SecretKey != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsCfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "svix-id", "svix-timestamp", "svix-signature"}
	r.Use(cors.New(corsCfg))

	ctx := context.Background()

	// Redis is optional: distributed rate limiting + webhook dedup
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// token verifier: OIDC discovery against the identity provider; the
	// insecure parse-only verifier is for integration runs without a reachable
	// issuer
	var verifier middleware.Verifier
	if cfg.Clerk.Issuer != "" {
		ver, err := oidc.NewVerifier(ctx, strings.TrimRight(cfg.Clerk.Issuer, "/"), cfg.Clerk.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	// MongoDB with retry/backoff to tolerate startup races
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
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
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = mongoClient.Disconnect(ctx) }()
	} else {
		logger.Fatalf("MONGODB_URI is required")
	}
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Warnf("failed to ensure indexes: %v", err)
	}

	// document bytes: MinIO when configured, local disk as fallback
	var store storage.Store
	minioCfg := storage.LoadMinIOConfig()
	if minioCfg.Endpoint != "" {
		st, err := storage.NewMinIOStorage(minioCfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			store = st
			logger.Infof("using MinIO storage at %s bucket=%s", minioCfg.Endpoint, minioCfg.Bucket)
		}
	}
	if store == nil {
		if dir := os.Getenv("LOCAL_STORAGE_DIR"); dir != "" {
			st, err := storage.NewLocalStorage(dir)
			if err != nil {
				logger.Warnf("failed to initialize local storage at %s: %v", dir, err)
			} else {
				store = st
				logger.Infof("using local document storage at %s", dir)
			}
		}
	}
	if store == nil {
		logger.Warn("no document storage configured; uploads will answer 503")
	}

	// services
	var idp users.ProfileFetcher
	if cfg.Clerk.SecretKey != "" {
		idp = identity.NewClient(cfg.Clerk.APIURL, cfg.Clerk.SecretKey)
	}
	userSvc := users.NewService(users.NewMongoUserRepository(db.Collection("users")), idp)
	claimSvc := claims.NewService(claims.NewMongoClaimRepository(db.Collection("claims")))
	docSvc := documents.NewService(documents.NewMongoDocumentRepository(db.Collection("documents")), store)
	calSvc := calendar.NewService(calendar.NewMongoEventRepository(db.Collection("calendar_events")))

	var mail mailer.Mailer
	if cfg.Resend.APIKey != "" {
		mail = mailer.NewResendMailer(cfg.Resend)
	}
	var checkout payments.CheckoutProvider
	if cfg.Stripe.SecretKey != "" {
		checkout = payments.NewStripeProvider(cfg.Stripe)
	}
	var envelopes esign.EnvelopeSender
	if cfg.DocuSign.IntegrationKey != "" && cfg.DocuSign.PrivateKeyPEM != "" {
		envelopes = esign.NewDocuSignClient(cfg.DocuSign)
	}

	// operational endpoints
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{
			"mongo":   mongoClient.Ping(c.Request.Context(), nil) == nil,
			"oidc":    verifier != nil,
			"storage": store != nil,
		}
		for _, ok := range deps {
			if !ok.(bool) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	if verifier == nil {
		logger.Fatalf("no token verifier available; set CLERK_ISSUER or ALLOW_INSECURE_TOKEN=true")
	}

	// authenticated user-facing surface
	api := r.Group("/api", middleware.AuthMiddleware(verifier), middleware.RequireUser(userSvc))
	handlers.NewClaimsHandler(claimSvc, userSvc).Register(api)
	handlers.NewDocumentsHandler(docSvc, userSvc).Register(api)
	handlers.NewCalendarHandler(calSvc).Register(api)
	handlers.NewPaymentsHandler(checkout).Register(api)
	handlers.NewEsignHandler(envelopes, docSvc).Register(api)

	shareHandler := handlers.NewShareHandler(docSvc, mail, cfg.Share)
	api.POST("/share-document", shareHandler.Share)
	// share links are redeemed by the email recipient, no session required
	r.GET("/api/shared/:token", shareHandler.Redeem)

	// back-office surface
	admin := r.Group("/api/admin", middleware.AuthMiddleware(verifier), middleware.RequireUser(userSvc), middleware.RequireAdmin())
	handlers.NewAdminHandler(userSvc, claimSvc).Register(admin)

	// inbound identity webhooks authenticate via signature, not bearer token
	if cfg.Clerk.WebhookSecret != "" {
		var dedup webhooks.Deduper = webhooks.NoopDeduper{}
		if redisClient != nil {
			dedup = webhooks.NewRedisDeduper(redisClient, 24*time.Hour)
		}
		wh, err := handlers.NewWebhooksHandler(userSvc, cfg.Clerk.WebhookSecret, dedup)
		if err != nil {
			logger.Fatalf("failed to initialize webhook handler: %v", err)
		}
		wh.Register(r.Group("/api"))
	} else {
		logger.Warn("CLERK_WEBHOOK_SECRET not set; identity webhooks disabled")
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting claimsaver api on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
