package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, order_number, supplier_id, status, order_date,
	expected_date, received_date, subtotal, tax, total, notes,
	created_by, approved_by, created_at, updated_at`

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la cabecera de la orden de compra.
func (r *PurchaseOrderRepo) Create(po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		po.ID, po.OrderNumber, po.SupplierID, po.Status, po.OrderDate,
		po.ExpectedDate, po.ReceivedDate, po.Subtotal, po.Tax, po.Total, po.Notes,
		po.CreatedBy, nullable(po.ApprovedBy), po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la orden.
func (r *PurchaseOrderRepo) CreateItem(it *entity.PurchaseOrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, purchase_order_id, product_id,
			quantity_ordered, quantity_received, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		it.ID, it.PurchaseOrderID, it.ProductID,
		it.QuantityOrdered, it.QuantityReceived, it.UnitPrice, it.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("create purchase order item: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID (sin líneas).
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
	po, err := scanPurchaseOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return po, nil
}

// GetItems obtiene las líneas de una orden.
func (r *PurchaseOrderRepo) GetItems(orderID string) ([]*entity.PurchaseOrderItem, error) {
	query := `
		SELECT id, purchase_order_id, product_id, quantity_ordered,
			quantity_received, unit_price, total_price
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrderItem
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.QuantityOrdered,
			&it.QuantityReceived, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update persiste cambios de estado y fechas de la orden.
func (r *PurchaseOrderRepo) Update(po *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders SET
			status = $2, expected_date = $3, received_date = $4,
			notes = $5, approved_by = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		po.ID, po.Status, po.ExpectedDate, po.ReceivedDate,
		po.Notes, nullable(po.ApprovedBy), po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

// TransitionStatus cambia el estado solo si la orden sigue en `from`. Toma el
// candado de fila por el resto de la transacción; una recepción concurrente
// que llegó tarde no afecta filas y pierde con ErrConcurrencyConflict.
func (r *PurchaseOrderRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	ct, err := r.q.Exec(context.Background(),
		`UPDATE purchase_orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition purchase order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// UpdateItemReceived registra la cantidad efectivamente recibida en una línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(itemID string, quantityReceived int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE purchase_order_items SET quantity_received = $2 WHERE id = $1`,
		itemID, quantityReceived,
	)
	if err != nil {
		return fmt.Errorf("update purchase order item: %w", err)
	}
	return nil
}

// List lista órdenes, opcionalmente por estado.
func (r *PurchaseOrderRepo) List(status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE 1=1`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY order_date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	return list, rows.Err()
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var approvedBy *string
	err := row.Scan(
		&po.ID, &po.OrderNumber, &po.SupplierID, &po.Status, &po.OrderDate,
		&po.ExpectedDate, &po.ReceivedDate, &po.Subtotal, &po.Tax, &po.Total, &po.Notes,
		&po.CreatedBy, &approvedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.ApprovedBy = deref(approvedBy)
	return &po, nil
}
