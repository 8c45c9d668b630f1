package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/application/rollover"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Access        *access.Service
	Businesses    *access.BusinessService
	Grants        *access.GrantService
	Ledger        *ledger.Service
	Rollover      *rollover.Engine
	Inventory     *inventory.InventoryUseCase
	Register      *inventory.RegisterTransactionUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Clock         clock.Clock
	Location      *time.Location
	JWTSecret     string
	Log           *logger.Logger
}

func role(r entity.Role) *entity.Role { return &r }

// AppConfig configuración de fiber para la API.
// Immutable: los valores de Params y Body llegan a los repositorios y no pueden
// apuntar al buffer que fiber reutiliza entre peticiones.
func AppConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todo bajo /api requiere Bearer Token; la identidad la emite el proveedor externo.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Negocios
	businessHandler := NewBusinessHandler(deps.Businesses, deps.Log)
	protected.Post("/businesses", businessHandler.Create)
	protected.Get("/businesses", businessHandler.List)

	biz := protected.Group("/businesses/:businessId")
	viewer := RequireBusinessRole(entity.RoleViewer, deps.Access)
	admin := RequireBusinessRole(entity.RoleAdmin, deps.Access)
	biz.Get("/roles", viewer, businessHandler.ListRoles)
	biz.Put("/roles", admin, businessHandler.AssignRole)
	biz.Delete("/roles/:userId", admin, businessHandler.RemoveRole)
	biz.Post("/photocopiers", admin, businessHandler.CreatePhotocopier)
	biz.Get("/photocopiers", viewer, businessHandler.ListPhotocopiers)
	biz.Get("/prices", viewer, businessHandler.ListPrices)
	biz.Put("/prices", admin, businessHandler.UpsertPrice)

	// Inventario
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.Register, deps.Replenishment, deps.Log)
	biz.Get("/inventory", viewer, inventoryHandler.List)
	biz.Post("/inventory/items", admin, inventoryHandler.CreateItem)
	biz.Get("/inventory/replenishment", viewer, inventoryHandler.GetReplenishmentList)

	// El negocio del insumo se conoce hasta cargarlo; el caso de uso autoriza.
	items := protected.Group("/inventory/items/:itemId")
	items.Post("/transactions", inventoryHandler.RegisterTransaction)
	items.Get("/transactions", inventoryHandler.ListTransactions)

	// Fotocopiadoras
	pc := protected.Group("/photocopiers/:photocopierId")
	pc.Put("/", RequirePhotocopierAccess(entity.ModuleConfiguracion, role(entity.RoleAdmin), deps.Access), businessHandler.UpdatePhotocopier)

	salesHandler := NewSalesHandler(deps.Ledger, deps.Clock, deps.Location, deps.Log)
	pc.Put("/sales/:date", RequirePhotocopierAccess(entity.ModuleCopias, role(entity.RoleOperador), deps.Access), salesHandler.Save)
	pc.Get("/sales/:date", RequirePhotocopierAccess(entity.ModuleCopias, role(entity.RoleViewer), deps.Access), salesHandler.Load)
	pc.Get("/history", RequirePhotocopierAccess(entity.ModuleHistorial, role(entity.RoleViewer), deps.Access), salesHandler.History)
	pc.Get("/reports/summary", RequirePhotocopierAccess(entity.ModuleReportes, role(entity.RoleViewer), deps.Access), salesHandler.Summary)

	// Permisos compartidos (solo el dueño; lo verifica GrantService)
	grantHandler := NewGrantHandler(deps.Grants, deps.Access, deps.Log)
	pc.Get("/access/:module", grantHandler.CheckAccess)
	pc.Put("/grants", grantHandler.Upsert)
	pc.Get("/grants", grantHandler.List)
	pc.Delete("/grants/:granteeId/:module", grantHandler.Revoke)
	protected.Get("/grants/received", grantHandler.Received)

	rolloverHandler := NewRolloverHandler(deps.Rollover, deps.Log)
	protected.Post("/devices/:deviceId/rollover", rolloverHandler.Run)
}
