package inventory

import "github.com/jhoicas/Inventario-lotes/internal/domain/entity"

// ApplyDelta aplica una entrada (IN) o salida (OUT) sobre un contador con piso en cero.
// clamped es true cuando la salida solicitada supera el valor registrado: señal de
// desviación del contador aguas arriba.
func ApplyDelta(current int64, dir entity.Direction, qty int64) (after int64, clamped bool) {
	switch dir {
	case entity.DirectionIn:
		after = current + qty
	case entity.DirectionOut:
		after = current - qty
	default:
		after = current
	}
	if after < 0 {
		return 0, true
	}
	return after, false
}

// DirectionFor devuelve la dirección y magnitud de un delta con signo.
func DirectionFor(delta int64) (entity.Direction, int64) {
	if delta < 0 {
		return entity.DirectionOut, -delta
	}
	return entity.DirectionIn, delta
}
