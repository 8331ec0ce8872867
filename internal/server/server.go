package server

import (
	"context"
	"os"
	"strings"

	awsclient "github.com/cyphera/cyphera-xdk/internal/client/aws"
	"github.com/cyphera/cyphera-xdk/internal/client/ethrpc"
	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/internal/constants"
	"github.com/cyphera/cyphera-xdk/internal/handlers"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/middleware"
	"github.com/cyphera/cyphera-xdk/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler Definitions
var (
	healthHandler      *handlers.HealthHandler
	idHandler          *handlers.IDHandler
	rlpHandler         *handlers.RLPHandler
	transactionHandler *handlers.TransactionHandler

	idService   *services.IDService
	rateLimiter *middleware.RateLimiter
	broadcaster *ethrpc.Broadcaster
)

// InitializeHandlers wires the services from cfg. SQS publishing and RPC
// broadcasting are enabled only when their URLs are set.
func InitializeHandlers(ctx context.Context, cfg *config.Config) error {
	ids := services.NewIDService(cfg.XIDMachineID)

	secrets, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to create secrets manager client")
	}
	keys := awsclient.NewSignerKeyProvider(secrets)

	var opts []services.TransactionServiceOption

	if cfg.SignedTxQueueURL != "" {
		publisher, err := awsclient.NewTransactionPublisher(ctx, cfg.SignedTxQueueURL)
		if err != nil {
			return errors.Wrap(err, "unable to create transaction publisher")
		}
		opts = append(opts, services.WithPublisher(publisher))
		logger.Info("Transaction publishing enabled", zap.String("queue_url", cfg.SignedTxQueueURL))
	}

	if cfg.EthRPCURL != "" {
		b, err := ethrpc.Dial(ctx, cfg.EthRPCURL, cfg.Chain)
		if err != nil {
			return errors.Wrap(err, "unable to connect to ethereum node")
		}
		broadcaster = b
		opts = append(opts, services.WithBroadcaster(b))
		logger.Info("Transaction broadcasting enabled", zap.String("chain", cfg.Chain.String()))
	}

	SetServices(cfg, ids, services.NewTransactionService(keys, ids, opts...))
	return nil
}

// SetServices builds the HTTP handlers over already constructed services.
func SetServices(cfg *config.Config, ids *services.IDService, transactions *services.TransactionService) {
	idService = ids
	healthHandler = handlers.NewHealthHandler(cfg.Chain)
	idHandler = handlers.NewIDHandler(ids)
	rlpHandler = handlers.NewRLPHandler()
	transactionHandler = handlers.NewTransactionHandler(transactions, cfg.Chain)
}

func InitializeRoutes(router *gin.Engine, cfg *config.Config) {
	// Configure and apply CORS middleware
	router.Use(configureCORS(cfg))
	// correlation ids share the id service counter
	router.Use(middleware.CorrelationIDMiddleware(idService.NewString))

	rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router.Use(rateLimiter.Middleware())

	// if we are not in production, log the request and response bodies
	router.Use(middleware.EnhancedLoggingMiddleware(!cfg.IsRelease()))
	router.Use(middleware.RequestLoggingMiddleware())

	// Health check
	router.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		ids := v1.Group("/ids")
		{
			ids.POST("", idHandler.CreateIDs)
			ids.GET("/:id", idHandler.GetID)
		}

		rlp := v1.Group("/rlp")
		{
			rlp.POST("/encode", rlpHandler.Encode)
			rlp.POST("/decode", rlpHandler.Decode)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("/unsigned", transactionHandler.Unsigned)
			transactions.POST("/hash", transactionHandler.Hash)
			transactions.POST("/sign", transactionHandler.Sign)
			transactions.POST("/sign/qr", transactionHandler.SignQR)
		}
	}
}

// Shutdown releases background resources started by InitializeHandlers and
// InitializeRoutes.
func Shutdown() {
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if broadcaster != nil {
		broadcaster.Close()
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}

	corsConfig.AllowMethods = envList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	corsConfig.AllowHeaders = envList("CORS_ALLOWED_HEADERS",
		[]string{"Origin", "Content-Type", "Accept", "Authorization", constants.CorrelationIDHeader})
	corsConfig.ExposeHeaders = envList("CORS_EXPOSED_HEADERS",
		[]string{constants.CorrelationIDHeader, "X-Transaction-ID", "X-Transaction-Hash", "X-RateLimit-Limit", "X-RateLimit-Remaining"})

	// Set credentials allowed
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}

// envList splits a comma separated environment variable, or returns def.
func envList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	values := strings.Split(raw, ",")
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}
