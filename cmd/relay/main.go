package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cyphera/cyphera-xdk/internal/client/ethrpc"
	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/relay"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Initialize logger
	logger.InitLogger(cfg.Stage)
	logger.Info("Lambda Cold Start: Initializing transaction relay for stage", zap.String("stage", cfg.Stage))
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.EthRPCURL == "" {
		logger.Fatal("ETH_RPC_URL is required for the relay")
	}

	broadcaster, err := ethrpc.Dial(context.Background(), cfg.EthRPCURL, cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to connect to ethereum node", zap.Error(err))
	}
	defer broadcaster.Close()

	r := relay.New(broadcaster, cfg.Chain, cfg.RelayMaxReceives)

	// Start the Lambda Handler
	lambda.Start(r.HandleSQSEvent)
}
