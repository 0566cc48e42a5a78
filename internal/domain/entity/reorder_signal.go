package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReorderSignal es la recomendación de demanda calculada por el sistema ML
// externo. El núcleo la consume en modo solo lectura para anotar alertas de
// stock bajo; nunca la produce ni escribe el ledger a partir de ella.
type ReorderSignal struct {
	ProductID         string
	PredictedDemand   decimal.Decimal
	SuggestedOrderQty int64
	Priority          int // 1 = más urgente
	GeneratedAt       time.Time
}
