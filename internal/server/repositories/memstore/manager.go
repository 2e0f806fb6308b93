// Package memstore is an in-memory RepositoryManager. It backs the "memory"
// store mode and the service and transport tests.
//
// Repositories ignore the DBTX they are bound to. WithTx serializes
// transactions with a mutex but does not roll back writes made before fn
// fails, so callers must write only as the last step of a transaction.
package memstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/issues"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/users"
)

type Manager struct {
	txMu  sync.Mutex
	store *store
}

func NewManager() *Manager {
	return &Manager{store: newStore()}
}

func (m *Manager) Conn() dbx.DBTX { return nil }

func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, nil)
}

func (m *Manager) RunMigrations(context.Context) error { return nil }

func (m *Manager) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Manager) Close() error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository { return &userRepo{s: m.store} }

func (m *Manager) Issues(dbx.DBTX) issues.Repository { return &issueRepo{s: m.store} }

func (m *Manager) Milestones(dbx.DBTX) milestones.Repository { return &milestoneRepo{s: m.store} }

func (m *Manager) Attachments(dbx.DBTX) attachments.Repository { return &attachmentRepo{s: m.store} }
