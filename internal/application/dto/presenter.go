package dto

import (
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// Presenter mapea entidades a respuestas y formatea fechas en la zona y el layout de presentación.
// Es el único lugar donde se decide cómo se ven las fechas en la salida.
type Presenter struct {
	Location *time.Location
	Layout   string
}

// NewPresenter construye el presentador; loc nil equivale a UTC y layout vacío a RFC3339.
func NewPresenter(loc *time.Location, layout string) Presenter {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = time.RFC3339
	}
	return Presenter{Location: loc, Layout: layout}
}

func (p Presenter) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(p.Location).Format(p.Layout)
}

// Lot convierte un lote.
func (p Presenter) Lot(l *entity.Lot) LotResponse {
	out := LotResponse{
		ID:          l.ID,
		PartCode:    l.PartCode,
		Quantity:    l.Quantity,
		State:       l.State.String(),
		QualityFlag: string(l.QualityFlag),
		VendorCode:  l.VendorCode,
		Label:       l.Label,
		Reference:   l.Reference,
		Active:      l.Active,
		Version:     l.Version,
		CreatedAt:   p.formatTime(l.CreatedAt),
		UpdatedAt:   p.formatTime(l.UpdatedAt),
	}
	if l.ScheduledAt != nil {
		out.ScheduledAt = p.formatTime(*l.ScheduledAt)
	}
	return out
}

// Lots convierte una lista de lotes.
func (p Presenter) Lots(list []*entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(list))
	for _, l := range list {
		out = append(out, p.Lot(l))
	}
	return out
}

// LedgerEntry convierte un asiento.
func (p Presenter) LedgerEntry(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		Seq:            e.Seq,
		PartCode:       e.PartCode,
		Direction:      string(e.Direction),
		State:          e.State.String(),
		Quantity:       e.Quantity,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		LotID:          e.LotID,
		Action:         e.Action,
		TransactionID:  e.TransactionID,
		ActorID:        e.ActorID,
		CreatedAt:      p.formatTime(e.CreatedAt),
	}
}

// LedgerEntries convierte una lista de asientos.
func (p Presenter) LedgerEntries(list []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, p.LedgerEntry(e))
	}
	return out
}

// Counters convierte los contadores de una parte.
func (p Presenter) Counters(list []*entity.StateCounter) []CounterResponse {
	out := make([]CounterResponse, 0, len(list))
	for _, c := range list {
		out = append(out, CounterResponse{
			State:     c.State.String(),
			Quantity:  c.Quantity,
			UpdatedAt: p.formatTime(c.UpdatedAt),
		})
	}
	return out
}
