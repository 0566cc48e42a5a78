package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/minimarket-pos/internal/application/advisor"
	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/application/usecase"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// InventoryHandler maneja el historial de movimientos, el stock vigente y las
// alertas de reorden.
type InventoryHandler struct {
	ledgerUC  *ledger.LedgerUseCase
	advisorUC *advisor.AdvisorUseCase
	productUC *usecase.ProductUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledgerUC *ledger.LedgerUseCase, advisorUC *advisor.AdvisorUseCase, productUC *usecase.ProductUseCase) *InventoryHandler {
	return &InventoryHandler{ledgerUC: ledgerUC, advisorUC: advisorUC, productUC: productUC}
}

// RegisterMovement godoc
// @Summary      Registrar un ajuste manual de stock
// @Description  Ajustes manuales (merma, rotura) y stock inicial. Ventas,
//               compras y conteos generan sus propios movimientos.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, type (IN|ADJUST), quantity con signo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	// Solo IN y ADJUST entran por acá; OUT y RETURN son exclusivos de ventas.
	if in.Type != entity.MovementTypeIN && in.Type != entity.MovementTypeADJUST {
		return respondError(c, domain.ErrInvalidInput)
	}
	reason := in.Reason
	if reason == "" {
		switch in.Type {
		case entity.MovementTypeIN:
			reason = entity.ReasonInitialStock
		case entity.MovementTypeADJUST:
			reason = entity.ReasonInventoryAdjust
		}
	}
	mov, err := h.ledgerUC.Append(c.Context(), ledger.AppendInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    reason,
		Notes:     in.Notes,
		UserID:    actor(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        type        query  string  false  "IN, OUT, ADJUST, RETURN"
// @Param        from        query  string  false  "Fecha desde (YYYY-MM-DD)"
// @Param        to          query  string  false  "Fecha hasta (YYYY-MM-DD)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.ListMovementsRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	in.DefaultPage()

	filter := repository.MovementFilter{
		ProductID: in.ProductID,
		Type:      in.Type,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	var err error
	if filter.From, err = parseDate(in.From); err != nil {
		return badBody(c)
	}
	if filter.To, err = parseDateEnd(in.To); err != nil {
		return badBody(c)
	}

	movs, err := h.ledgerUC.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	list := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		list = append(list, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// GetStock godoc
// @Summary      Stock vigente de un producto
// @Tags         inventory
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	product, err := h.productUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:    product.ID,
		CurrentStock: product.CurrentStock,
		StockStatus:  product.StockStatus,
	})
}

// GetReorderSignal godoc
// @Summary      Señal de reorden de un producto
// @Description  Recomendación calculada por el pipeline ML externo (solo lectura).
// @Tags         inventory
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReorderSignalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reorder-signals/{id} [get]
func (h *InventoryHandler) GetReorderSignal(c *fiber.Ctx) error {
	resp, err := h.advisorUC.GetReorderSignal(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListLowStock godoc
// @Summary      Productos bajo punto de reorden
// @Description  Anotados con la señal ML si existe; primero los que tienen
//               señal (por prioridad), luego por déficit.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	list, err := h.advisorUC.ListLowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Sequence:     m.Sequence,
		Type:         m.Type,
		Quantity:     m.Quantity,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		Reason:       m.Reason,
		Reference:    m.Reference,
		MovementDate: m.MovementDate.Format("2006-01-02 15:04:05"),
	}
}
