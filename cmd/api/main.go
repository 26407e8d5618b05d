package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/taborder/ussd-api/internal/application/ordering"
	"github.com/taborder/ussd-api/internal/application/ussd"
	"github.com/taborder/ussd-api/internal/domain/geo"
	"github.com/taborder/ussd-api/internal/infrastructure/catalog"
	"github.com/taborder/ussd-api/internal/infrastructure/filestore"
	"github.com/taborder/ussd-api/internal/infrastructure/notify"
	"github.com/taborder/ussd-api/internal/infrastructure/postgres"
	"github.com/taborder/ussd-api/internal/infrastructure/storage"
	httpRouter "github.com/taborder/ussd-api/internal/interfaces/http"
	"github.com/taborder/ussd-api/pkg/config"
	"github.com/taborder/ussd-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.DataDir).Msg("directorio de datos")
	}

	ctx := context.Background()

	// El ping de arranque decide el backend: PostgreSQL o archivos.
	pool, err := postgres.NewPool(ctx, cfg.DB)
	durable := err == nil
	if durable {
		defer pool.Close()
		log.Info().Msg("backend durable activo: PostgreSQL")
	} else {
		log.Warn().Err(err).Msg("PostgreSQL no disponible; backend de archivos activo")
	}

	dir := cfg.Storage.DataDir
	backends := storage.Backends{
		Users:        filestore.NewUserRepository(dir),
		Orders:       filestore.NewOrderRepository(dir),
		Sessions:     filestore.NewSessionRepository(dir),
		CartFallback: filestore.NewCartRepository(dir),
	}
	var comboRepo *postgres.ComboRepo
	if durable {
		backends.Users = postgres.NewUserRepository(pool)
		backends.Orders = postgres.NewOrderRepository(pool)
		backends.Sessions = postgres.NewSessionRepository(pool)
		backends.CartPrimary = postgres.NewCartRepository(pool)
		comboRepo = postgres.NewComboRepository(pool)
	}
	gw := storage.New(backends, durable, log)

	var cat *catalog.Provider
	if durable {
		cat = catalog.New(comboRepo, cfg.Catalog.File, log)
	} else {
		cat = catalog.New(nil, cfg.Catalog.File, log)
	}

	notifier := notify.New(cfg.Notify, log)
	cartUC := ordering.NewCartUseCase(gw, cat, log)
	checkoutUC := ordering.NewCheckoutUseCase(gw, cartUC, notifier, log)

	ttl := time.Duration(cfg.USSD.SessionTTLSeconds) * time.Second
	sessions := ussd.NewSessionManager(gw, ttl, log)
	sessions.Restore()

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	sessions.StartEviction(evictCtx, time.Duration(cfg.USSD.EvictionIntervalSeconds)*time.Second)

	engine := ussd.NewEngine(
		sessions,
		geo.NewResolver(geo.JitterLocator{}),
		cat, cartUC, checkoutUC, gw, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		USSD:   httpRouter.NewUSSDHandler(engine, log),
		Health: httpRouter.NewHealthHandler(cfg.App.Name, sessions, gw, cat),
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

	log.Info().Msg("aplicación detenida")
}
