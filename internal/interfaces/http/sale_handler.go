package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/sales"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP del motor de ventas.
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar una venta
// @Description  Calcula totales con IGV, descuenta stock de todas las líneas de
//               forma atómica y deja la venta en estado COMPLETED.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "payment_method, items; customer_id opcional"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.uc.CreateSale(c.Context(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener una venta
// @Tags         sales
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Produce      json
// @Param        customer_id  query  string  false  "Filtrar por cliente"
// @Param        status       query  string  false  "PENDING, COMPLETED, CANCELLED"
// @Param        from         query  string  false  "Fecha desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Fecha hasta (YYYY-MM-DD)"
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.ListSalesRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	in.DefaultPage()

	filter := repository.SaleFilter{
		CustomerID: in.CustomerID,
		Status:     in.Status,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	var err error
	if filter.From, err = parseDate(in.From); err != nil {
		return badBody(c)
	}
	if filter.To, err = parseDateEnd(in.To); err != nil {
		return badBody(c)
	}

	list, err := h.uc.ListSales(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sales": list})
}

// Cancel godoc
// @Summary      Anular una venta
// @Description  Solo ventas COMPLETED. Genera movimientos RETURN que devuelven
//               el stock de cada línea en una sola transacción.
// @Tags         sales
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	resp, err := h.uc.CancelSale(c.Context(), c.Params("id"), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// parseDate convierte YYYY-MM-DD al inicio del día; vacío = sin filtro.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateEnd convierte YYYY-MM-DD al final del día para filtros "hasta".
func parseDateEnd(s string) (*time.Time, error) {
	t, err := parseDate(s)
	if err != nil || t == nil {
		return t, err
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end, nil
}
