package dto

import "time"

// IntakeRequest body para POST /api/lots.
type IntakeRequest struct {
	PartCode    string     `json:"part_code"`
	Quantity    int64      `json:"quantity"`
	VendorCode  string     `json:"vendor_code,omitempty"`
	Label       string     `json:"label,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	Track       string     `json:"track,omitempty"` // stock | enquiry
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// BulkIntakeRequest body para POST /api/lots/bulk.
type BulkIntakeRequest struct {
	Items []IntakeRequest `json:"items"`
}

// MoveRequest body para POST /api/lots/move y /api/lots/move/bulk.
type MoveRequest struct {
	LotIDs    []string `json:"lot_ids"`
	FromState string   `json:"from_state"`
	ToState   string   `json:"to_state"`
	Quantity  *int64   `json:"quantity,omitempty"`
}

// AdjustRequest body para PATCH /api/lots/:id.
type AdjustRequest struct {
	Quantity    *int64  `json:"quantity,omitempty"`
	QualityFlag *string `json:"quality_flag,omitempty"`
}

// LotResponse salida de un lote. Las fechas ya vienen formateadas para presentación.
type LotResponse struct {
	ID          string `json:"id"`
	PartCode    string `json:"part_code"`
	Quantity    int64  `json:"quantity"`
	State       string `json:"state"`
	QualityFlag string `json:"quality_flag"`
	VendorCode  string `json:"vendor_code,omitempty"`
	Label       string `json:"label,omitempty"`
	Reference   string `json:"reference,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	Active      bool   `json:"active"`
	Version     int64  `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// LotListResponse lista paginada de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// LedgerEntryResponse salida de un asiento del ledger.
type LedgerEntryResponse struct {
	Seq            int64  `json:"seq"`
	PartCode       string `json:"part_code"`
	Direction      string `json:"direction"`
	State          string `json:"state"`
	Quantity       int64  `json:"quantity"`
	QuantityBefore int64  `json:"quantity_before"`
	QuantityAfter  int64  `json:"quantity_after"`
	LotID          string `json:"lot_id"`
	Action         string `json:"action"`
	TransactionID  string `json:"transaction_id"`
	ActorID        string `json:"actor_id"`
	CreatedAt      string `json:"created_at"`
}

// MoveResultResponse lote movido y sus asientos.
type MoveResultResponse struct {
	Lot     LotResponse           `json:"lot"`
	Entries []LedgerEntryResponse `json:"entries"`
}

// CounterResponse contador de una parte en un estado.
type CounterResponse struct {
	State     string `json:"state"`
	Quantity  int64  `json:"quantity"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ItemResultResponse resultado por ítem de una operación masiva.
type ItemResultResponse struct {
	Index int            `json:"index"`
	LotID string         `json:"lot_id,omitempty"`
	OK    bool           `json:"ok"`
	Lot   *LotResponse   `json:"lot,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// BulkResponse resumen de una operación masiva.
type BulkResponse struct {
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Items     []ItemResultResponse `json:"items"`
}

// StateReconciliationResponse conciliación de un estado.
type StateReconciliationResponse struct {
	State     string `json:"state"`
	Counter   int64  `json:"counter"`
	Replayed  int64  `json:"replayed"`
	BrokenSeq int64  `json:"broken_seq,omitempty"`
}

// ReconcileResponse salida de GET /api/parts/:code/reconcile.
type ReconcileResponse struct {
	PartCode       string                        `json:"part_code"`
	Consistent     bool                          `json:"consistent"`
	CounterTotal   int64                         `json:"counter_total"`
	ActiveLotTotal int64                         `json:"active_lot_total"`
	States         []StateReconciliationResponse `json:"states"`
}
