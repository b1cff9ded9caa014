package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"cryptoproxy/internal/api"
	"cryptoproxy/internal/auth"
	"cryptoproxy/internal/binance"
	"cryptoproxy/internal/config"
	"cryptoproxy/internal/logging"
	"cryptoproxy/internal/trading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(cfg.Logging)

	logger.Info().
		Int("port", cfg.Server.Port).
		Bool("testnet", cfg.Binance.Testnet).
		Str("base_url", cfg.Binance.BaseURL).
		Str("binance_api_key", config.MaskKey(cfg.Binance.APIKey)).
		Msg("Starting crypto proxy service")

	signer := auth.NewSignerWithRecvWindow(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.RecvWindow)

	exchangeClient, err := binance.NewClient(
		cfg.Binance.BaseURL,
		signer,
		logger,
		binance.WithTimeout(cfg.Binance.Timeout),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create exchange client")
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create token service")
	}

	tradingService := trading.NewService(exchangeClient, logger)

	server, err := api.NewServer(cfg, tokens, tradingService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create server")
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error().Err(err).Msg("Server error")
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown server gracefully")
		}

		logger.Info().Msg("Shutdown complete")
	}
}
