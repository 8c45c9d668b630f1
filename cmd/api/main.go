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

	_ "github.com/jhoicas/Copias-api/docs"
	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/application/rollover"
	httpRouter "github.com/jhoicas/Copias-api/internal/interfaces/http"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/config"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// @title        Copias API
// @version      1.0
// @description  Libro de ventas diario por fotocopiadora, inventario de insumos y permisos por módulo.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	loc, err := cfg.Business.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria del negocio")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer st.close()

	clk := clock.System{}
	accessSvc := access.NewService(st.photocopiers, st.businesses, st.roles, st.grants, st.superAdmins, cfg.Auth.SuperAdminIDs, clk)
	businessSvc := access.NewBusinessService(accessSvc, st.businesses, st.roles, st.photocopiers, st.prices, clk)
	grantSvc := access.NewGrantService(st.photocopiers, st.grants, clk)

	paper := cfg.Business.PaperSupplyName
	deduction := inventory.NewDeductionEngine(st.txRunner, paper, clk, log)
	reconciler := inventory.NewReconciler(st.items, st.prices, paper, log)
	inventoryUC := inventory.NewInventoryUseCase(st.items, st.transactions, st.txRunner, reconciler, accessSvc, clk, log)
	registerUC := inventory.NewRegisterTransactionUseCase(st.txRunner, st.items, accessSvc, clk)
	replenishmentUC := inventory.NewReplenishmentUseCase(st.items, accessSvc)

	ledgerSvc := ledger.NewService(ledger.Deps{
		TxRunner:        st.txRunner,
		SaleRepo:        st.sales,
		PhotocopierRepo: st.photocopiers,
		PriceRepo:       st.prices,
		Access:          accessSvc,
		Locker:          st.locker,
		Deductor:        deduction,
		Clock:           clk,
		Logger:          log,
		DeductOnSave:    cfg.Business.DeductOnSave,
	})
	rolloverEngine := rollover.NewEngine(st.rollover, clk, loc, log)

	app := fiber.New(httpRouter.AppConfig(cfg.App.Name))
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Copias API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Access:        accessSvc,
		Businesses:    businessSvc,
		Grants:        grantSvc,
		Ledger:        ledgerSvc,
		Rollover:      rolloverEngine,
		Inventory:     inventoryUC,
		Register:      registerUC,
		Replenishment: replenishmentUC,
		Clock:         clk,
		Location:      loc,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log,
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
