// Package users is the credential store: persistence of user credential
// records keyed by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskauth/internal/server/models"
)

// Repository persists credential records. Implementations must enforce email
// uniqueness in storage so that concurrent inserts for one email can never
// both succeed.
type Repository interface {
	// FindByEmail returns the record for email. A missing record is reported
	// as found == false with a nil error.
	FindByEmail(ctx context.Context, email string) (user *models.User, found bool, err error)

	// Insert stores a new record, returning common.ErrAlreadyExists when the
	// email is taken.
	Insert(ctx context.Context, user *models.User) error
}
