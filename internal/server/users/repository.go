// Package users holds the durable username → account mapping: the data
// model, the repository interface with its file and embedded-database
// backends, and the service that implements registration, authentication,
// and history updates on top of them.
package users

import "context"

// Repository is the durable keyed store of accounts. Implementations
// return common.ErrorNotFound from Get and Update when the username is
// absent, and common.ErrDuplicateUser from Create when it is taken.
type Repository interface {
	Get(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
}
