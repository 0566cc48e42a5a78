package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/minimarket-pos/internal/application/advisor"
	"github.com/jhoicas/minimarket-pos/internal/application/counting"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/application/purchasing"
	"github.com/jhoicas/minimarket-pos/internal/application/sales"
	"github.com/jhoicas/minimarket-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CustomerUC *usecase.CustomerUseCase
	SupplierUC *usecase.SupplierUseCase
	LedgerUC   *ledger.LedgerUseCase
	SaleUC     *sales.SaleUseCase
	PurchaseUC *purchasing.PurchaseOrderUseCase
	CountUC    *counting.CountUseCase
	AdvisorUC  *advisor.AdvisorUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Proveedores
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)

	// Órdenes de compra
	purchases := api.Group("/purchase-orders")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/approve", purchaseHandler.Approve)
	purchases.Post("/:id/receive", purchaseHandler.Receive)
	purchases.Post("/:id/cancel", purchaseHandler.Cancel)

	// Conteos de inventario
	counts := api.Group("/inventory-counts")
	countHandler := NewCountHandler(deps.CountUC)
	counts.Post("/", countHandler.Create)
	counts.Get("/", countHandler.List)
	counts.Get("/:id", countHandler.GetByID)
	counts.Post("/:id/start", countHandler.Start)
	counts.Post("/:id/items", countHandler.RecordItem)
	counts.Post("/:id/complete", countHandler.Complete)
	counts.Post("/:id/cancel", countHandler.Cancel)

	// Inventario: ledger, stock vigente y alertas de reorden
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.AdvisorUC, deps.ProductUC)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/stock/:id", inventoryHandler.GetStock)
	inv.Get("/reorder-signals/:id", inventoryHandler.GetReorderSignal)
	inv.Get("/low-stock", inventoryHandler.ListLowStock)
}
