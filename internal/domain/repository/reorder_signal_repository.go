package repository

import "github.com/jhoicas/minimarket-pos/internal/domain/entity"

// ReorderSignalRepository lee las recomendaciones calculadas por el sistema
// ML externo. Solo lectura: el núcleo nunca escribe señales de reorden.
type ReorderSignalRepository interface {
	GetByProduct(productID string) (*entity.ReorderSignal, error)
	ListTop(limit int) ([]*entity.ReorderSignal, error)
}
