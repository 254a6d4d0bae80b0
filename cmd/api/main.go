package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ventas-api/internal/application/billing"
	"github.com/jhoicas/ventas-api/internal/application/inventory"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ventas-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-api/internal/platform/observability"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		AuthHeader:     cfg.Tracing.AuthHeader,
		Insecure:       cfg.App.Env != "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	var (
		txRunner repository.TxRunner
		repos    repository.TxRepos
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.New()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("usando store en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración de esquema")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.Repos(pool)
	}

	coordinator := billing.NewCoordinator(txRunner, log, observability.Tracer())
	salesSvc := billing.NewSaleService(coordinator, repos.Documents, log)
	invoicesSvc := billing.NewInvoiceService(coordinator, repos.Documents, log)
	productUC := usecase.NewProductUseCase(txRunner, repos.Products)
	clientUC := billing.NewClientUseCase(repos.Clients)
	registerMovementUC := inventory.NewRegisterMovementUseCase(coordinator, repos.Movements)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, observability.Tracer()))

	// Swagger UI en http://localhost:<port>/docs, solo si el archivo existe.
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Ventas API",
		}))
	}

	if !cfg.JWT.Enabled() {
		log.Warn().Msg("JWT_SECRET vacío: rutas /api sin autenticación")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		ClientUC:         clientUC,
		RegisterMovement: registerMovementUC,
		Sales:            salesSvc,
		Invoices:         invoicesSvc,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
