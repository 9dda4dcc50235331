package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
)

// tokenMinter issues a default token and stores it as the account's single
// live api token.
type tokenMinter struct {
	issuer      TokenIssuer
	repomanager repomanager.RepositoryManager
}

func (m tokenMinter) mint(ctx context.Context, db dbx.DBTX, a *models.Account) (string, error) {
	token, err := m.issuer.Issue(ctx, a.ID, a.Name, a.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if err := m.repomanager.APITokens(db).Set(ctx, a.ID, token); err != nil {
		return "", err
	}
	a.APIToken = token
	return token, nil
}
