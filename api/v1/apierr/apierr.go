// Package apierr maps zoning errors onto API errors.
package apierr

import (
	"errors"

	"cdc_zoning/internal/auth"
	"cdc_zoning/internal/httpx"
	"cdc_zoning/internal/lock"
	"cdc_zoning/internal/zoning"
)

// From converts err into the AppError sent to the client. The message is the
// error text, which names the entity involved.
func From(err error) *httpx.AppError {
	var appErr *httpx.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	switch {
	case errors.Is(err, zoning.ErrNotFound):
		return httpx.ErrNotFound(msg)
	case errors.Is(err, zoning.ErrDuplicateName):
		return httpx.ErrAlreadyExists(msg)
	case errors.Is(err, zoning.ErrHasReferences),
		errors.Is(err, zoning.ErrNotEmpty),
		errors.Is(err, zoning.ErrAliasInUse),
		errors.Is(err, zoning.ErrZoneGrouped):
		return httpx.ErrStateConflict(msg)
	case errors.Is(err, zoning.ErrInvalidName),
		errors.Is(err, zoning.ErrDuplicateAlias):
		return httpx.ErrParamIllegal(msg)
	case errors.Is(err, zoning.ErrRemoteOperation):
		return httpx.ErrExternalError(msg, err)
	case errors.Is(err, zoning.ErrNoRegistry):
		return httpx.ErrStateConflict(msg)
	case errors.Is(err, zoning.ErrInvalidDocument):
		return httpx.ErrStorageError("", err)
	case errors.Is(err, lock.ErrNotAcquired):
		return httpx.ErrBusy("", err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return httpx.ErrBadLogin()
	}
	return httpx.ErrInternalError("", err)
}
