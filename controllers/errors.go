package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/services"
)

// statusForError maps the ledger's error kinds onto HTTP status codes.
// Occupancy drift and illegal state transitions both come back as 409 so
// the front-end can tell the user to reconcile rather than retry.
// Duplicate-key violations (unique table number, unique category name)
// are caller mistakes and land on 409 too, not 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrTableConflict),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
