//go:build lambda
// +build lambda

package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/server"
	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title           Cyphera XDK API
// @version         1.0
// @description     XID generation, RLP encoding and EIP-1559 transaction signing

// @host      localhost:8000
// @BasePath  /api/v1

var ginLambda *ginadapter.GinLambda

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize logger
	logger.InitLogger(cfg.Stage)

	gin.SetMode(cfg.GinMode)

	if err := server.InitializeHandlers(context.Background(), cfg); err != nil {
		logger.Fatal("Failed to initialize handlers", zap.Error(err))
	}

	// Initialize your Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	server.InitializeRoutes(r, cfg)

	ginLambda = ginadapter.New(r)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Add debug logging
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("request", spew.Sdump(req)),
	)

	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync()
	lambda.Start(Handler)
}
