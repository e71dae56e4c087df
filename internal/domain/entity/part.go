package entity

// Part parte identificada por un código inmutable. Dato maestro de solo lectura,
// administrado fuera del motor y consultado mediante el resolvedor de referencias.
type Part struct {
	Code  string
	Name  string
	Model string // modelo/categoría
}
