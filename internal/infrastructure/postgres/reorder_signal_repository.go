package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

var _ repository.ReorderSignalRepository = (*ReorderSignalRepo)(nil)

const reorderSignalColumns = `product_id, predicted_demand, suggested_order_qty, priority, generated_at`

// ReorderSignalRepo lee la tabla poblada por el pipeline ML externo.
// Solo lectura: este servicio no escribe señales.
type ReorderSignalRepo struct {
	q Querier
}

func NewReorderSignalRepository(q Querier) *ReorderSignalRepo {
	return &ReorderSignalRepo{q: q}
}

func (r *ReorderSignalRepo) GetByProduct(productID string) (*entity.ReorderSignal, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+reorderSignalColumns+` FROM reorder_signals WHERE product_id = $1`, productID)
	s, err := scanReorderSignal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reorder signal: %w", err)
	}
	return s, nil
}

func (r *ReorderSignalRepo) ListTop(limit int) ([]*entity.ReorderSignal, error) {
	query := `SELECT ` + reorderSignalColumns + ` FROM reorder_signals
		ORDER BY priority ASC, predicted_demand DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reorder signals: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReorderSignal
	for rows.Next() {
		s, err := scanReorderSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reorder signal: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanReorderSignal(row pgx.Row) (*entity.ReorderSignal, error) {
	var s entity.ReorderSignal
	err := row.Scan(&s.ProductID, &s.PredictedDemand, &s.SuggestedOrderQty, &s.Priority, &s.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
