package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/minimarket-pos/internal/application/counting"
	"github.com/jhoicas/minimarket-pos/internal/application/dto"
)

// CountHandler maneja el ciclo de vida de los conteos de inventario.
type CountHandler struct {
	uc *counting.CountUseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(uc *counting.CountUseCase) *CountHandler {
	return &CountHandler{uc: uc}
}

// Create godoc
// @Summary      Programar un conteo de inventario
// @Tags         inventory-counts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCountRequest  true  "description, scheduled_date"
// @Success      201   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory-counts [post]
func (h *CountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener un conteo
// @Tags         inventory-counts
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-counts/{id} [get]
func (h *CountHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar conteos
// @Tags         inventory-counts
// @Produce      json
// @Param        status  query  string  false  "PLANNED, IN_PROGRESS, COMPLETED, CANCELLED"
// @Success      200  {array}  dto.CountResponse
// @Router       /api/inventory-counts [get]
func (h *CountHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "counts": list})
}

// Start godoc
// @Summary      Iniciar un conteo
// @Description  Solo conteos PLANNED.
// @Tags         inventory-counts
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory-counts/{id}/start [post]
func (h *CountHandler) Start(c *fiber.Ctx) error {
	resp, err := h.uc.Start(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// RecordItem godoc
// @Summary      Registrar cantidad contada de un producto
// @Description  Solo conteos IN_PROGRESS. Repetir un producto sobrescribe la
//               línea anterior.
// @Tags         inventory-counts
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del conteo"
// @Param        body  body  dto.RecordCountRequest  true  "product_id, counted_quantity"
// @Success      204   "registrado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory-counts/{id}/items [post]
func (h *CountHandler) RecordItem(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.RecordCount(c.Context(), c.Params("id"), actor(c), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Complete godoc
// @Summary      Completar un conteo
// @Description  Genera un ADJUST por cada diferencia contra el stock vigente
//               al momento del cierre, todo en una sola transacción.
// @Tags         inventory-counts
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory-counts/{id}/complete [post]
func (h *CountHandler) Complete(c *fiber.Ctx) error {
	resp, err := h.uc.Complete(c.Context(), c.Params("id"), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Cancel godoc
// @Summary      Cancelar un conteo
// @Description  PLANNED o IN_PROGRESS. No genera ajustes.
// @Tags         inventory-counts
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory-counts/{id}/cancel [post]
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	resp, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
