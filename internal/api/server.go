package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cryptoproxy/internal/auth"
	"cryptoproxy/internal/config"
	"cryptoproxy/internal/trading"
)

// Server represents the API server
type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer creates a new API server wired to the token service and
// trading gateway.
func NewServer(cfg *config.Config, tokens *auth.TokenService, tradingService *trading.Service, logger zerolog.Logger) (*Server, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if tradingService == nil {
		return nil, fmt.Errorf("trading service is required")
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	server := &Server{
		config: cfg.Server,
		router: router,
		logger: logger,
	}

	handlers := NewHandlers(tradingService, tokens, cfg.Auth, logger)
	server.setupRoutes(handlers, tokens)

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("Starting API server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures the HTTP surface. Everything that touches
// account state or places orders sits behind the bearer-token
// middleware.
func (s *Server) setupRoutes(handlers *Handlers, tokens *auth.TokenService) {
	s.router.GET("/health", handlers.Health)
	s.router.GET("/test-binance", handlers.TestBinance)
	s.router.POST("/auth/login", handlers.Login)

	protected := s.router.Group("")
	protected.Use(AuthMiddleware(tokens))
	{
		protected.GET("/balance/:asset", handlers.GetBalance)
		protected.POST("/trade/buy-crypto", handlers.BuyCrypto)
		protected.POST("/trade/sell-crypto", handlers.SellCrypto)

		apiTrade := protected.Group("/api/trade")
		{
			apiTrade.POST("/create", handlers.CreateTrade)
			apiTrade.GET("/status/:id", handlers.GetTradeStatus)
		}
	}
}
