package repositories

import (
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
)

// NewRecordNotFoundError returns the NotFound error every repository uses for a missing record
func NewRecordNotFoundError(kind, id string) error {
	return dnderr.NotFoundf("%s with ID '%s' not found", kind, id).
		WithMeta(kind+"_id", id)
}

// NewRecordExistsError returns the AlreadyExists error for a duplicate record
func NewRecordExistsError(kind, id string) error {
	return dnderr.AlreadyExistsf("%s with ID '%s' already exists", kind, id).
		WithMeta(kind+"_id", id)
}
