package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// State es la etiqueta de estado gruesa de un lote (ubicación/estatus en bodega).
// Conjunto cerrado: cualquier valor fuera de la enumeración es inválido.
type State uint8

const (
	StateUnknown State = iota
	StateOffSystem     // recibido, aún fuera del sistema
	StateInspected     // M136
	StateHold          // retenido por calidad
	StateReleased      // M101
	StateNew           // consulta (enquiry) registrada
	StateInTransit     // en tránsito hacia la bodega
	StateArrived       // llegado
	stateCount
)

var stateNames = [stateCount]string{
	StateUnknown:   "",
	StateOffSystem: "OFF_SYSTEM",
	StateInspected: "M136",
	StateHold:      "HOLD",
	StateReleased:  "M101",
	StateNew:       "NEW",
	StateInTransit: "IN_TRANSIT",
	StateArrived:   "ARRIVED",
}

// AllStates devuelve los estados válidos en orden canónico.
func AllStates() []State {
	out := make([]State, 0, stateCount-1)
	for s := StateOffSystem; s < stateCount; s++ {
		out = append(out, s)
	}
	return out
}

// Valid indica si s pertenece a la enumeración.
func (s State) Valid() bool { return s > StateUnknown && s < stateCount }

func (s State) String() string {
	if s >= stateCount {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return stateNames[s]
}

// ParseState convierte el nombre persistido (OFF_SYSTEM, M136, ...) en State.
func ParseState(name string) (State, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for s := StateOffSystem; s < stateCount; s++ {
		if stateNames[s] == name {
			return s, nil
		}
	}
	return StateUnknown, fmt.Errorf("estado desconocido %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("estado inválido %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Value persiste el estado como texto.
func (s State) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("estado inválido %d", uint8(s))
	}
	return s.String(), nil
}

// Scan lee el estado desde una columna de texto.
func (s *State) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	}
	return fmt.Errorf("no se puede leer State desde %T", src)
}

// Track es el flujo en el que nace un lote.
type Track string

const (
	TrackStock   Track = "stock"   // recepción física: OFF_SYSTEM → M136 → M101
	TrackEnquiry Track = "enquiry" // consulta: NEW → IN_TRANSIT → ARRIVED
)

// InitialState devuelve el estado inicial del flujo; vacío equivale a stock.
func (t Track) InitialState() (State, bool) {
	switch t {
	case "", TrackStock:
		return StateOffSystem, true
	case TrackEnquiry:
		return StateNew, true
	}
	return StateUnknown, false
}

// QualityFlag marca de calidad de un lote.
type QualityFlag string

const (
	QualityOK   QualityFlag = "OK"
	QualityHold QualityFlag = "HOLD"
)

// ParseQualityFlag valida la marca de calidad recibida.
func ParseQualityFlag(s string) (QualityFlag, error) {
	switch QualityFlag(strings.ToUpper(strings.TrimSpace(s))) {
	case QualityOK:
		return QualityOK, nil
	case QualityHold:
		return QualityHold, nil
	}
	return "", fmt.Errorf("marca de calidad desconocida %q", s)
}

// FlagFor devuelve la marca de calidad que corresponde a un estado: HOLD solo en StateHold.
func FlagFor(s State) QualityFlag {
	if s == StateHold {
		return QualityHold
	}
	return QualityOK
}
