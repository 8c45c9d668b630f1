package entity

import (
	"fmt"
	"time"
)

// DateLayout formato de fecha civil (día de negocio) en la API y en la base de datos.
const DateLayout = "2006-01-02"

// DateIn devuelve el día calendario de t en la zona del negocio, normalizado a medianoche UTC.
// Dos instantes del mismo día local producen exactamente el mismo valor.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate trunca t a su día calendario (en la zona propia de t) a medianoche UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta "2006-01-02".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formatea un día de negocio.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
