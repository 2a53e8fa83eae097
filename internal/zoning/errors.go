package zoning

import (
	"errors"

	"cdc_zoning/internal/model"
)

var (
	// ErrDuplicateName is returned when an alias, zone or zone group name is already taken
	ErrDuplicateName = errors.New("name already exists")
	// ErrNotFound is returned when the named or numbered entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotEmpty is returned by the stores when deleting a zone or group that still has members
	ErrNotEmpty = errors.New("not empty")
	// ErrHasReferences is returned when a delete is blocked by dependents
	ErrHasReferences = errors.New("has references")
	// ErrInvalidName is returned when a name fails validation
	ErrInvalidName = errors.New("invalid name")
	// ErrOrphanReference reports a zone alias id absent from member_aliases. Informational.
	ErrOrphanReference = errors.New("orphan alias reference")
	// ErrRemoteOperation is returned when the CDC device rejected or failed a call
	ErrRemoteOperation = errors.New("remote operation failed")
	// ErrDuplicateAlias is returned when a node batch names the same alias twice
	ErrDuplicateAlias = errors.New("duplicate alias in batch")
	// ErrAliasInUse is returned when linking an alias that already belongs to another zone
	ErrAliasInUse = errors.New("alias already linked to another zone")
	// ErrZoneGrouped is returned when adding a zone that already belongs to another group
	ErrZoneGrouped = errors.New("zone already belongs to a zone group")
	// ErrInvalidDocument is returned when a persisted document does not conform to its schema
	ErrInvalidDocument = model.ErrInvalidDocument
)
