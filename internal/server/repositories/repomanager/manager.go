// Package repomanager vends repositories bound to a database handle or an
// open transaction, so a service can run several repositories in one
// dbx.WithTx scope.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/apitokens"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/configs"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Configs(db dbx.DBTX) configs.Repository
	APITokens(db dbx.DBTX) apitokens.Repository
}
