// Package storage persists waitlist and gift-claim emails.
//
// Every backend implements EmailStore: a single insert operation into one of
// two tables with unique-email semantics. A duplicate insert returns an error
// matching ErrConflict; any other failure is a transport error.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Table names a logical collection of emails.
type Table string

const (
	// TableSubscribers holds waitlist signups.
	TableSubscribers Table = "subscribers"
	// TableGiftEligible holds gift-code claims.
	TableGiftEligible Table = "eligible_for_gift"
)

// Tables lists every table a backend must provide.
var Tables = []Table{TableSubscribers, TableGiftEligible}

// Valid reports whether t is a known table.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

var (
	// ErrConflict indicates the email already exists in the table.
	ErrConflict = errors.New("storage: email already stored")
	// ErrInvalidTable is returned for table names outside Tables.
	ErrInvalidTable = errors.New("storage: unknown table")
	// ErrEmptyEmail is returned when asked to store an empty address.
	ErrEmptyEmail = errors.New("storage: email is required")
)

// EmailStore inserts emails into a table with unique-email semantics.
type EmailStore interface {
	Insert(ctx context.Context, table Table, email string) error
	Name() string
	Close() error
}

// Record is a stored email as kept by the local backends.
type Record struct {
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsConflict reports whether err is a unique-email violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func conflictError(table Table) error {
	return fmt.Errorf("%w in %s", ErrConflict, table)
}

func checkInsert(ctx context.Context, table Table, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !table.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTable, string(table))
	}
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
