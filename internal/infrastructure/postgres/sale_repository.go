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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, sale_number, customer_id, seller_id, payment_method, status,
	subtotal, discount_percentage, discount_amount, tax, total, notes,
	sale_date, created_at, updated_at`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.SaleNumber, nullable(s.CustomerID), nullable(s.SellerID), s.PaymentMethod, s.Status,
		s.Subtotal, s.DiscountPercentage, s.DiscountAmount, s.Tax, s.Total, s.Notes,
		s.SaleDate, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price,
			discount_percentage, total_price, unit_cost, total_cost, profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice,
		it.DiscountPercentage, it.TotalPrice, it.UnitCost, it.TotalCost, it.Profit,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID (sin líneas).
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetItems obtiene las líneas de una venta.
func (r *SaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price,
			discount_percentage, total_price, unit_cost, total_cost, profit
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.DiscountPercentage, &it.TotalPrice, &it.UnitCost, &it.TotalCost, &it.Profit); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// TransitionStatus cambia el estado de la venta (único UPDATE permitido).
// Condicional sobre el estado actual: si otra transacción ya lo movió, el
// UPDATE no afecta filas y la transición pierde con ErrConcurrencyConflict.
func (r *SaleRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	ct, err := r.q.Exec(context.Background(),
		`UPDATE sales SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition sale status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// List lista ventas según filtro.
func (r *SaleRepo) List(filter repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", pos)
		args = append(args, filter.CustomerID)
		pos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND sale_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND sale_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY sale_date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, sellerID *string
	err := row.Scan(
		&s.ID, &s.SaleNumber, &customerID, &sellerID, &s.PaymentMethod, &s.Status,
		&s.Subtotal, &s.DiscountPercentage, &s.DiscountAmount, &s.Tax, &s.Total, &s.Notes,
		&s.SaleDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CustomerID = deref(customerID)
	s.SellerID = deref(sellerID)
	return &s, nil
}
