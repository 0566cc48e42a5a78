package dto

// CreateCountRequest body para POST /api/inventory-counts.
type CreateCountRequest struct {
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD
	Responsible   string `json:"responsible,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// RecordCountRequest body para POST /api/inventory-counts/:id/items.
// Registrar dos veces el mismo producto sobrescribe la línea anterior.
type RecordCountRequest struct {
	ProductID       string `json:"product_id"`
	CountedQuantity int64  `json:"counted_quantity"`
	Notes           string `json:"notes,omitempty"`
}

// CountItemResponse línea contada.
type CountItemResponse struct {
	ProductID       string `json:"product_id"`
	SystemQuantity  int64  `json:"system_quantity"`
	CountedQuantity int64  `json:"counted_quantity"`
	Difference      int64  `json:"difference"`
}

// CountResponse conteo con sus líneas.
type CountResponse struct {
	ID            string              `json:"id"`
	CountNumber   string              `json:"count_number"`
	Description   string              `json:"description"`
	Status        string              `json:"status"`
	ScheduledDate string              `json:"scheduled_date"`
	StartDate     string              `json:"start_date,omitempty"`
	EndDate       string              `json:"end_date,omitempty"`
	Responsible   string              `json:"responsible,omitempty"`
	Items         []CountItemResponse `json:"items"`
}
