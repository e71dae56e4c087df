package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los errores que el motor expone a sus llamadores.
type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidTransition      ErrorKind = "INVALID_TRANSITION"
	KindConcurrentModification ErrorKind = "CONCURRENT_MODIFICATION"
	KindReferenceNotFound      ErrorKind = "REFERENCE_NOT_FOUND"
	KindTransient              ErrorKind = "TRANSIENT"
)

// Error es el error estructurado del dominio: tipo + mensaje legible (+ causa opcional).
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por tipo, de modo que errors.Is(err, ErrNotFound) funciona con cualquier mensaje.
// Una referencia no resuelta también es un error de validación de la entrada.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindValidation && e.Kind == KindReferenceNotFound
}

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation             = &Error{Kind: KindValidation, Message: "entrada inválida"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "recurso no encontrado"}
	ErrInvalidTransition      = &Error{Kind: KindInvalidTransition, Message: "transición de estado no permitida"}
	ErrConcurrentModification = &Error{Kind: KindConcurrentModification, Message: "el recurso fue modificado concurrentemente"}
	ErrReferenceNotFound      = &Error{Kind: KindReferenceNotFound, Message: "referencia externa no encontrada"}
	ErrTransient              = &Error{Kind: KindTransient, Message: "almacenamiento no disponible temporalmente"}
)

// NewError construye un error del tipo indicado con mensaje formateado.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap construye un error del tipo indicado conservando la causa.
func Wrap(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return NewError(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return NewError(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return NewError(KindInvalidTransition, format, args...)
}

func ConcurrentModification(format string, args ...any) *Error {
	return NewError(KindConcurrentModification, format, args...)
}

func ReferenceNotFound(format string, args ...any) *Error {
	return NewError(KindReferenceNotFound, format, args...)
}

// KindOf devuelve el tipo de un error del dominio, o "" si err no lo es.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsRetriable indica si la operación completa puede reintentarse con backoff.
// Solo los conflictos de bloqueo y las fallas transitorias del almacenamiento lo son.
func IsRetriable(err error) bool {
	switch KindOf(err) {
	case KindConcurrentModification, KindTransient:
		return true
	}
	return false
}
