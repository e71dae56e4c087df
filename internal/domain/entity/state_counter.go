package entity

import "time"

// StateCounter cantidad agregada de una parte en un estado (tabla materializada).
// Valor derivado: cada cambio va acompañado de un asiento en el ledger en la misma transacción.
type StateCounter struct {
	PartCode  string
	State     State
	Quantity  int64
	UpdatedAt time.Time
}
