// Package apitokens stores the single live API token of each account.
package apitokens

import "context"

// Repository keeps one token per account; Set overwrites the previous one.
type Repository interface {
	Set(ctx context.Context, accountID int64, token string) error
}
