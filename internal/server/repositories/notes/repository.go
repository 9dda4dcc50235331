package notes

import (
	"context"
)

type Repository interface {
	DeleteByOwner(ctx context.Context, accountID int64) (int64, error)
}
