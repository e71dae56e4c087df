package entity

import (
	"sort"
	"time"
)

// Dirección de un asiento del ledger.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Acciones que originan asientos.
const (
	ActionIntake     = "INTAKE"
	ActionMove       = "MOVE"
	ActionAdjust     = "ADJUST"
	ActionPromote    = "PROMOTE"
	ActionDeactivate = "DEACTIVATE"
)

// LedgerEntry asiento inmutable de un movimiento de cantidad sobre (parte, estado).
// Quantity es la cantidad solicitada; QuantityAfter refleja el recorte a cero si lo hubo.
type LedgerEntry struct {
	Seq            int64
	PartCode       string
	Direction      Direction
	State          State
	Quantity       int64
	QuantityBefore int64
	QuantityAfter  int64
	LotID          string
	Action         string
	TransactionID  string // agrupa el OUT y el IN de un mismo movimiento
	ActorID        string
	CreatedAt      time.Time
}

// Replay reproduce el valor del contador aplicando los asientos en orden de Seq con el mismo
// recorte a cero que el motor. Devuelve también el primer asiento cuyo QuantityBefore
// no coincide con el valor acumulado (nil si la historia es consistente).
func Replay(entries []*LedgerEntry) (int64, *LedgerEntry) {
	var value int64
	var broken *LedgerEntry
	for _, e := range entries {
		if broken == nil && e.QuantityBefore != value {
			broken = e
		}
		switch e.Direction {
		case DirectionIn:
			value += e.Quantity
		case DirectionOut:
			value -= e.Quantity
		}
		if value < 0 {
			value = 0
		}
	}
	return value, broken
}

// SortBySeq ordena los asientos por Seq, el orden real de escritura sobre cada contador.
func SortBySeq(entries []*LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
}

// Residuals devuelve, por estado, la cantidad que los asientos de un lote dejaron en cada
// contador. Usa el efecto real de cada asiento (después - antes), de modo que una salida
// recortada solo descuenta lo que el contador tenía.
func Residuals(entries []*LedgerEntry) map[State]int64 {
	out := make(map[State]int64)
	for _, e := range entries {
		out[e.State] += e.QuantityAfter - e.QuantityBefore
	}
	return out
}
