// Package repomanager vends repositories bound to a database handle and runs
// units of work inside a transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verificationtokens"
)

// TxFunc is a unit of work. Repositories obtained from the manager with db
// take part in the transaction.
type TxFunc func(ctx context.Context, db dbx.DBTX) error

type RepositoryManager interface {
	// DB is the non-transactional handle for single-statement work.
	DB() dbx.DBTX

	Accounts(db dbx.DBTX) accounts.Repository
	VerificationTokens(db dbx.DBTX) verificationtokens.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	// RunInTx runs fn in one transaction: committed when fn returns nil,
	// rolled back when it returns an error or panics.
	RunInTx(ctx context.Context, fn TxFunc) error

	RunMigrations(ctx context.Context) error
}
