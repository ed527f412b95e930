package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docanalyzer/docs"
	"docanalyzer/internal/config"
	"docanalyzer/internal/extract"
	handlers "docanalyzer/internal/http/handler"
	"docanalyzer/internal/http/middleware"
	"docanalyzer/internal/llm"
	"docanalyzer/internal/logger"
	apptrace "docanalyzer/internal/otel"
	"docanalyzer/internal/service"
)

const shutdownTimeout = 15 * time.Second

// @title Document Analyzer API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := apptrace.Init(ctx, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracing", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		zl.Fatal("failed to register http metrics", zap.Error(err))
	}

	provider := llm.NewOpenAIGateway(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout(),
	})
	if !provider.Configured() {
		zl.Warn("LLM_API_KEY is not set; analysis requests will be rejected")
	}
	gateway, err := llm.NewInstrumentedGateway(provider, reg)
	if err != nil {
		zl.Fatal("failed to register llm metrics", zap.Error(err))
	}

	analysisSvc := service.NewAnalysisService(extract.New(), gateway, service.Limits{
		MaxFileSize:   cfg.Upload.MaxFileSizeBytes(),
		MaxCrossFiles: cfg.Upload.MaxCrossFiles,
	}, zl)
	exportSvc := service.NewExportService()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit(),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.CORS(cfg.CORSAllowedOrigin, handlers.SkippedFilesHeader))

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, analysisSvc, exportSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Optional single-page client, registered last so API routes win.
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		zl.Info("server_starting", zap.String("addr", addr), zap.String("model", provider.Model()))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	case <-ctx.Done():
		zl.Info("server_stopping")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("tracing shutdown failed", zap.Error(err))
	}
}
