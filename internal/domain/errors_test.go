package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Copias-api/internal/domain"
)

func TestErrorTaxonomy_Is(t *testing.T) {
	assert.ErrorIs(t, domain.Invalid("photocopier_id", "requerido"), domain.ErrInvalidInput)
	assert.ErrorIs(t, &domain.AccessDeniedError{UserID: "u", PhotocopierID: "p", Module: "copias"}, domain.ErrForbidden)

	cause := errors.New("timeout")
	err := domain.Persistence("insert sale_records", cause)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
}

func TestPersistence_NoDobleEnvoltura(t *testing.T) {
	inner := domain.Persistence("delete", errors.New("boom"))
	outer := domain.Persistence("save", fmt.Errorf("ledger: %w", inner))

	var pe *domain.PersistenceError
	assert.True(t, errors.As(outer, &pe))
	assert.Equal(t, "delete", pe.Op)
	assert.Nil(t, domain.Persistence("noop", nil))
}

func TestPersistence_NoEnvuelveErroresDeDominio(t *testing.T) {
	err := domain.Persistence("get", fmt.Errorf("insumo x: %w", domain.ErrNotFound))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.IsKnown(domain.Invalid("f", "r")))
	assert.False(t, domain.IsKnown(errors.New("timeout")))
}
