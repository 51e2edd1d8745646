// Package repomanager hands out repository instances bound to a particular
// DB handle. Passing a transactional dbx.DBTX yields repositories that take
// part in that transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/authkeeper/internal/dbx"
	"github.com/avolkov/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/avolkov/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
