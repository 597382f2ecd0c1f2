package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThrough(t *testing.T) {
	err := NewForbidden("not the ticket owner")
	wrapped := fmt.Errorf("update: %w", err)

	domainErr := ToDomainError(wrapped)
	require.NotNil(t, domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
}

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	domainErr := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestMapError_NilStaysNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}

func TestAuthFailed_GenericMessage(t *testing.T) {
	domainErr := ToDomainError(NewAuthFailed())
	require.NotNil(t, domainErr)
	assert.Equal(t, "AUTH_FAILED", domainErr.Code)
	assert.Equal(t, http.StatusUnauthorized, domainErr.HTTPStatus)
	// one message for every credential failure
	assert.Equal(t, "invalid email or password", domainErr.Message)
}
