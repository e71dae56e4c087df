package entity

import "time"

// Lot representa un lote recibido (un batch físico de una parte) y su estado actual.
// Solo el motor de transiciones lo modifica; nunca se borra, se desactiva.
type Lot struct {
	ID          string
	PartCode    string
	Quantity    int64
	State       State
	QualityFlag QualityFlag
	VendorCode  string
	Label       string
	Reference   string
	ScheduledAt *time.Time // llegada programada (flujo enquiry)
	Active      bool
	Version     int64 // se incrementa en cada escritura
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone devuelve una copia independiente del lote.
func (l *Lot) Clone() *Lot {
	if l == nil {
		return nil
	}
	c := *l
	if l.ScheduledAt != nil {
		t := *l.ScheduledAt
		c.ScheduledAt = &t
	}
	return &c
}
