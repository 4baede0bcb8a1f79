package service

import (
	"errors"

	"gorm.io/gorm"
)

// Domain error kinds. The transport maps these onto HTTP statuses; anything
// not wrapping one of them is reported as a generic server error.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid input")
)

// orNotFound converts gorm's record-not-found into the domain kind.
func orNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
