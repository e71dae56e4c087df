package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// Columnas del export de recepción heredado.
var columns = []string{"part_code", "quantity", "vendor_code", "label", "reference", "track", "scheduled_at"}

// Formatos de fecha aceptados en scheduled_at.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "02/01/2006 15:04", "2006-01-02"}

// rowError error de una fila del archivo (line es 1-based, incluyendo el encabezado).
type rowError struct {
	line int
	err  error
}

func (e rowError) Error() string { return fmt.Sprintf("línea %d: %v", e.line, e.err) }

// decoderFor devuelve el decodificador del archivo: latin1 (ISO-8859-1), cp1252 o utf8.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	case "utf8", "utf-8", "":
		return unicode.UTF8BOM, nil
	}
	return nil, fmt.Errorf("codificación no soportada %q", name)
}

// parseRows lee el CSV separado por ';' y convierte cada fila en IntakeInput.
// Las filas inválidas se reportan sin detener la lectura.
func parseRows(r io.Reader, enc encoding.Encoding, loc *time.Location) ([]inventory.IntakeInput, []int, []rowError, error) {
	cr := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range columns[:2] {
		if _, ok := index[required]; !ok {
			return nil, nil, nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var inputs []inventory.IntakeInput
	var lines []int
	var rowErrs []rowError
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, rowError{line: line, err: err})
			continue
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("part_code") == "" && get("quantity") == "" {
			continue
		}
		qty, err := strconv.ParseInt(get("quantity"), 10, 64)
		if err != nil {
			rowErrs = append(rowErrs, rowError{line: line, err: fmt.Errorf("cantidad inválida %q", get("quantity"))})
			continue
		}
		in := inventory.IntakeInput{
			PartCode:   get("part_code"),
			Quantity:   qty,
			VendorCode: get("vendor_code"),
			Label:      get("label"),
			Reference:  get("reference"),
			Track:      entity.Track(strings.ToLower(get("track"))),
		}
		if raw := get("scheduled_at"); raw != "" {
			t, err := parseDate(raw, loc)
			if err != nil {
				rowErrs = append(rowErrs, rowError{line: line, err: err})
				continue
			}
			in.ScheduledAt = &t
		}
		inputs = append(inputs, in)
		lines = append(lines, line)
	}
	return inputs, lines, rowErrs, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", raw)
}
