package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/ledgerline/payment-orchestrator/internal/adapter/handler/http"
	"github.com/ledgerline/payment-orchestrator/internal/config"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	uc     *usecase.PaymentUsecase
}

func NewServer(cfg *config.Config, logger *zap.Logger, uc *usecase.PaymentUsecase) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	s := &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		uc:     uc,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.Address()
	s.logger.Info("starting HTTP server", zap.String("address", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "payment",
		})
	})

	intentHandler := handlers.NewIntentHandler(s.uc, s.logger)
	chargeHandler := handlers.NewChargeHandler(s.uc, s.logger)
	paymentHandler := handlers.NewPaymentHandler(s.uc, s.logger)

	s.echo.POST("/intents", intentHandler.CreateIntent)
	s.echo.POST("/intents/:id/confirm", intentHandler.ConfirmIntent)
	s.echo.POST("/intents/:id/capture", intentHandler.CaptureIntent)

	s.echo.POST("/charges/:id/refund", chargeHandler.RefundCharge)

	s.echo.GET("/payments", paymentHandler.ListPayments)
	s.echo.GET("/payments/:id", paymentHandler.GetPayment)
	s.echo.PUT("/payments/:id", paymentHandler.UpdatePayment)
	s.echo.POST("/payments/:id/refund", paymentHandler.RefundPayment)
}
