package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, sequence, type, quantity, stock_before, stock_after,
	reason, reference, notes, created_by, movement_date, created_at`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL.
// Solo inserta y lee: la tabla no tiene UPDATE ni DELETE en ninguna ruta.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento. El índice único (product_id, sequence)
// convierte una carrera de secuencia en ErrConcurrencyConflict.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.Sequence, m.Type, m.Quantity, m.StockBefore, m.StockAfter,
		m.Reason, m.Reference, m.Notes, nullable(m.CreatedBy), m.MovementDate, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// LastSequence devuelve la última secuencia del producto (0 si no hay movimientos).
func (r *StockMovementRepo) LastSequence(productID string) (int64, error) {
	var seq int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(sequence), 0) FROM stock_movements WHERE product_id = $1`,
		productID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last sequence: %w", err)
	}
	return seq, nil
}

// ListByProductAsc historial completo de un producto en orden de secuencia (para replay).
func (r *StockMovementRepo) ListByProductAsc(productID string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY sequence`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// List lista movimientos según filtro (producto, tipo, rango de fechas).
func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY movement_date DESC, sequence DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Sequence, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.Reason, &m.Reference, &m.Notes, &createdBy, &m.MovementDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
