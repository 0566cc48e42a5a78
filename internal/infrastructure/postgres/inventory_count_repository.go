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

var _ repository.InventoryCountRepository = (*InventoryCountRepo)(nil)

const inventoryCountColumns = `id, count_number, description, status, scheduled_date,
	start_date, end_date, responsible, notes, created_at, updated_at`

// InventoryCountRepo implementación de InventoryCountRepository sobre PostgreSQL.
type InventoryCountRepo struct {
	q Querier
}

func NewInventoryCountRepository(q Querier) *InventoryCountRepo {
	return &InventoryCountRepo{q: q}
}

// Create persiste la cabecera del conteo.
func (r *InventoryCountRepo) Create(c *entity.InventoryCount) error {
	query := `
		INSERT INTO inventory_counts (` + inventoryCountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.CountNumber, c.Description, c.Status, c.ScheduledDate,
		c.StartDate, c.EndDate, c.Responsible, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory count: %w", err)
	}
	return nil
}

// GetByID obtiene un conteo por ID (sin líneas).
func (r *InventoryCountRepo) GetByID(id string) (*entity.InventoryCount, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+inventoryCountColumns+` FROM inventory_counts WHERE id = $1`, id)
	c, err := scanInventoryCount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory count: %w", err)
	}
	return c, nil
}

// Update persiste cambios de estado y fechas del conteo.
func (r *InventoryCountRepo) Update(c *entity.InventoryCount) error {
	query := `
		UPDATE inventory_counts SET
			status = $2, start_date = $3, end_date = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Status, c.StartDate, c.EndDate, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory count: %w", err)
	}
	return nil
}

// TransitionStatus cambia el estado solo si el conteo sigue en `from`; un
// cierre concurrente que llegó tarde no afecta filas y pierde con
// ErrConcurrencyConflict.
func (r *InventoryCountRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	ct, err := r.q.Exec(context.Background(),
		`UPDATE inventory_counts SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition inventory count status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// UpsertItem inserta o reemplaza la línea de conteo de un producto.
// Un recuento repetido del mismo producto pisa el anterior.
func (r *InventoryCountRepo) UpsertItem(it *entity.InventoryCountItem) error {
	query := `
		INSERT INTO inventory_count_items (id, count_id, product_id, system_quantity,
			counted_quantity, difference, counted_by, counted_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (count_id, product_id) DO UPDATE SET
			system_quantity = EXCLUDED.system_quantity,
			counted_quantity = EXCLUDED.counted_quantity,
			difference = EXCLUDED.difference,
			counted_by = EXCLUDED.counted_by,
			counted_at = EXCLUDED.counted_at,
			notes = EXCLUDED.notes`
	_, err := r.q.Exec(context.Background(), query,
		it.ID, it.CountID, it.ProductID, it.SystemQuantity,
		it.CountedQuantity, it.Difference, it.CountedBy, it.CountedAt, it.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory count item: %w", err)
	}
	return nil
}

// GetItems obtiene las líneas de un conteo.
func (r *InventoryCountRepo) GetItems(countID string) ([]*entity.InventoryCountItem, error) {
	query := `
		SELECT id, count_id, product_id, system_quantity, counted_quantity,
			difference, counted_by, counted_at, notes
		FROM inventory_count_items WHERE count_id = $1 ORDER BY counted_at`
	rows, err := r.q.Query(context.Background(), query, countID)
	if err != nil {
		return nil, fmt.Errorf("get inventory count items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryCountItem
	for rows.Next() {
		var it entity.InventoryCountItem
		if err := rows.Scan(&it.ID, &it.CountID, &it.ProductID, &it.SystemQuantity,
			&it.CountedQuantity, &it.Difference, &it.CountedBy, &it.CountedAt, &it.Notes); err != nil {
			return nil, fmt.Errorf("scan inventory count item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List lista conteos, opcionalmente por estado.
func (r *InventoryCountRepo) List(status string, limit, offset int) ([]*entity.InventoryCount, error) {
	query := `SELECT ` + inventoryCountColumns + ` FROM inventory_counts WHERE 1=1`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY scheduled_date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory counts: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryCount
	for rows.Next() {
		c, err := scanInventoryCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory count: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanInventoryCount(row pgx.Row) (*entity.InventoryCount, error) {
	var c entity.InventoryCount
	err := row.Scan(
		&c.ID, &c.CountNumber, &c.Description, &c.Status, &c.ScheduledDate,
		&c.StartDate, &c.EndDate, &c.Responsible, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
