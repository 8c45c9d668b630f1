package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrPersistence  = errors.New("fallo de persistencia")
)

// ValidationError entrada mal formada. errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError el colaborador de almacenamiento falló (red, timeout, constraint).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence envuelve err como PersistenceError salvo que ya sea un error de dominio conocido.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) || IsKnown(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsKnown informa si err pertenece a la taxonomía de dominio (no persistencia).
func IsKnown(err error) bool {
	for _, target := range []error{ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden, ErrConflict} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AccessDeniedError la verificación de acceso falló; se devuelve antes de leer o escribir.
type AccessDeniedError struct {
	UserID        string
	PhotocopierID string
	BusinessID    string
	Module        string
}

func (e *AccessDeniedError) Error() string {
	if e.PhotocopierID != "" {
		return fmt.Sprintf("usuario %s sin acceso a %s en fotocopiadora %s", e.UserID, e.Module, e.PhotocopierID)
	}
	return fmt.Sprintf("usuario %s sin acceso al negocio %s", e.UserID, e.BusinessID)
}

func (e *AccessDeniedError) Is(target error) bool { return target == ErrForbidden }

// DeductionWarning el descuento de inventario falló después de guardar la venta.
// No es fatal: la venta quedó guardada y el inventario puede estar desactualizado.
type DeductionWarning struct {
	BusinessID string
	Err        error
}

func (w *DeductionWarning) Error() string {
	return fmt.Sprintf("descuento de inventario del negocio %s falló: %v", w.BusinessID, w.Err)
}

func (w *DeductionWarning) Unwrap() error { return w.Err }
