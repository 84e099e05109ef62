package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fitora/fitora/internal/config"
	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

type ServerParam struct {
	fx.In

	Engine     *gin.Engine
	Log        *zap.Logger
	Config     config.Config
	Invoicing  *config.InvoicingConfigHolder
	InvoiceSvc invoicedomain.Service
}

type Server struct {
	engine     *gin.Engine
	log        *zap.Logger
	cfg        config.Config
	invoicing  *config.InvoicingConfigHolder
	invoiceSvc invoicedomain.Service
}

func NewServer(p ServerParam) *Server {
	return &Server{
		engine:     p.Engine,
		log:        p.Log.Named("server"),
		cfg:        p.Config,
		invoicing:  p.Invoicing,
		invoiceSvc: p.InvoiceSvc,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	invoices := api.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.POST("/:id/document", s.RetryInvoiceDocument)
	invoices.GET("/preview/amount-words", s.PreviewAmountInWords)
	invoices.GET("/preview/tax", s.PreviewTaxBreakdown)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func RunHTTP(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + s.cfg.HTTPPort,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
