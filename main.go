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

	"github.com/wapangaji/kiganjani/handlers"
	"github.com/wapangaji/kiganjani/internal/accounts"
	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/database"
	"github.com/wapangaji/kiganjani/internal/notification"
	"github.com/wapangaji/kiganjani/internal/oidc"
	"github.com/wapangaji/kiganjani/internal/otp"
	"github.com/wapangaji/kiganjani/internal/property"
	"github.com/wapangaji/kiganjani/internal/sessions"
	"github.com/wapangaji/kiganjani/internal/sms"
	"github.com/wapangaji/kiganjani/internal/storage"
	"github.com/wapangaji/kiganjani/internal/tenant"
	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/metrics"
	"github.com/wapangaji/kiganjani/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v sms=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.SMS.BaseURL != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var accountsSvc *accounts.Service
	var sessionsSvc *sessions.Service

	ctx := context.Background()

	// Connect to Redis early so the blacklist, OTP store, sessions and
	// rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err == nil {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if sessionsSvc == nil {
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
			deps["users"] = (accountsSvc != nil)
		}

		if cfg.OIDC.Issuer != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Optional operator SSO verifier for the back-office dashboard. The
	// mobile flow uses phone + password + OTP and never touches this.
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, strings.TrimRight(cfg.OIDC.Issuer, "/"), cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		val := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")))
		if val == "true" {
			logger.Warn("enabling insecure OIDC verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// Prefer Redis-based refresh sessions when available (fast, TTL-native)
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// SMS gateway: Infobip-style HTTP API when configured, noop otherwise
	var gateway sms.Gateway = sms.NoopGateway{}
	if cfg.SMS.BaseURL != "" {
		gateway = sms.NewInfobipGateway(cfg.SMS)
		logger.Infof("SMS gateway configured: %s", cfg.SMS.BaseURL)
	} else {
		logger.Warnf("SMS_BASE_URL not set; running with noop SMS gateway (OTP verification will fail)")
	}

	// OTP store lives in Redis; without it the register/reset flows are down
	var otpSvc *otp.Service
	if redisClient != nil {
		otpSvc = otp.NewService(otp.NewStore(redisClient, "otp:"), gateway, cfg.OTP.TTL, cfg.OTP.MaxAttempts)
	} else {
		logger.Warnf("Redis unavailable; OTP flows disabled")
	}

	// MinIO object storage (optional: uploads degrade to 503 when absent)
	var objectStore *storage.MinIOStorage
	if cfg.MinIO.Endpoint != "" {
		st, err := storage.NewMinIOStorage(&cfg.MinIO)
		if err != nil {
			logger.Warnf("failed to initialize MinIO: %v", err)
		} else {
			objectStore = st
			logger.Infof("Connected to MinIO: %s (bucket %s)", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		}
	}

	// MongoDB system of record: retry with backoff to tolerate startup races
	var client *mongo.Client
	{
		const maxAttempts = 5
		backoff := time.Second
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
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDB.Database)

	accountsSvc = accounts.NewService(
		accounts.NewMongoUserRepository(db.Collection("users")),
		accounts.NewMongoSessionAuditRepository(db.Collection("user_sessions")),
	)
	if sessionsSvc == nil {
		sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
		logger.Infof("Using MongoDB for session storage")
	}

	smsSvc := sms.NewService(gateway,
		sms.NewMongoTemplateRepository(db.Collection("sms_templates")),
		sms.NewMongoLogRepository(db.Collection("sms_log")),
	)
	notificationSvc := notification.NewService(
		notification.NewMongoRepository(db.Collection("notifications")),
		notification.NewMongoPreferenceRepository(db.Collection("notification_preferences")),
	)
	propertySvc := property.NewService(property.NewMongoRepositories(db), notificationSvc)
	tenantSvc := tenant.NewService(tenant.NewMongoRepositories(db), propertySvc, smsSvc, notificationSvc)

	root := r.Group("/")
	if otpSvc != nil {
		handlers.NewAuthHandler(cfg, accountsSvc, otpSvc, sessionsSvc).Register(root)
	} else {
		logger.Warnf("auth handlers not registered because the OTP store is unavailable")
	}
	handlers.NewPropertyHandler(cfg, propertySvc, objectStore).Register(root)
	handlers.NewTenantHandler(cfg, tenantSvc, objectStore).Register(root)
	handlers.NewNotificationHandler(cfg, notificationSvc, smsSvc).Register(root)
	handlers.RegisterSwagger(r)

	// Operator SSO surface: claims echo for the back-office dashboard
	api := r.Group("/api/v1")
	if verifier != nil {
		api.GET("/operator/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			claims, _ := c.Get("claims")
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	} else {
		api.GET("/operator/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "OIDC not configured"})
		})
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: mongo=%v redis=%v minio=%v oidc=%v jwt_secret_set=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.OIDC.Issuer != "", cfg.JWT.Secret != "")
	logger.Infof("Starting kiganjani service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
