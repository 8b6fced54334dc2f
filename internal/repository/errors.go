package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrUsageLimitReached is returned when a guarded usage increment finds the cap reached.
	ErrUsageLimitReached = errors.New("campaign usage limit reached")
	// ErrActiveApplicationExists is returned when a user already holds an active application.
	ErrActiveApplicationExists = errors.New("active campaign application already exists")
	// ErrMaxUsesBelowUsage is returned when an update would set max_uses under current_uses.
	ErrMaxUsesBelowUsage = errors.New("max_uses below current uses")
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

func isCheckViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == checkViolation && pgErr.ConstraintName == constraint
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
