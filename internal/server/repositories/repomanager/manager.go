package repomanager

import (
	"context"

	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/issues"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound either to the shared connection
// (Conn) or to the transaction handed to a WithTx callback.
type RepositoryManager interface {
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	Users(db dbx.DBTX) users.Repository
	Issues(db dbx.DBTX) issues.Repository
	Milestones(db dbx.DBTX) milestones.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
