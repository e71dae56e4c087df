package inventory

import "github.com/jhoicas/Inventario-lotes/internal/domain/entity"

// Edge arista legal de la máquina de estados.
type Edge struct {
	From entity.State
	To   entity.State
}

// edges es la lista cerrada de transiciones legales. Cualquier otra es inválida.
var edges = []Edge{
	{entity.StateOffSystem, entity.StateInspected},
	{entity.StateInspected, entity.StateHold},
	{entity.StateHold, entity.StateInspected},
	{entity.StateInspected, entity.StateReleased},
	{entity.StateNew, entity.StateInTransit},
	{entity.StateInTransit, entity.StateArrived},
}

// adjacency tabla estática indexada por [from][to].
var adjacency [entity.StateArrived + 1][entity.StateArrived + 1]bool

func init() {
	for _, e := range edges {
		adjacency[e.From][e.To] = true
	}
}

// CanTransition indica si from → to es una arista de la tabla.
func CanTransition(from, to entity.State) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return adjacency[from][to]
}

// Edges devuelve una copia de las aristas legales.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// IsTerminal indica si no existe ninguna arista saliente desde s.
func IsTerminal(s entity.State) bool {
	if !s.Valid() {
		return false
	}
	for _, ok := range adjacency[s] {
		if ok {
			return false
		}
	}
	return true
}

// HoldReturnState estado al que vuelve un lote liberado de HOLD.
func HoldReturnState() entity.State { return entity.StateInspected }
