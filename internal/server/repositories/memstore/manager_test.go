package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repomanager.RepositoryManager = (*Manager)(nil)

func seedUser(t *testing.T, m *Manager, login string) *models.User {
	t.Helper()
	u, err := m.Users(m.Conn()).Create(context.Background(), &models.User{UserID: login, Name: login})
	require.NoError(t, err)
	return u
}

func TestUsers(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	repo := m.Users(m.Conn())

	u := seedUser(t, m, "alice")
	assert.Equal(t, int64(1), u.ID)

	_, err := repo.Create(ctx, &models.User{UserID: "alice"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByLogin(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIssues_Lifecycle(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	owner := seedUser(t, m, "alice")
	repo := m.Issues(m.Conn())

	created, err := repo.Create(ctx, &models.Issue{Subject: "bug", Comment: "crash", OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = repo.Create(ctx, &models.Issue{Subject: "orphan", OwnerID: 99})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "alice", got.Owner.Name)
	assert.Nil(t, got.Milestone)

	ms, err := m.Milestones(m.Conn()).Create(ctx, &models.Milestone{
		Subject: "v1", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	got.MilestoneID = &ms.ID
	got.Subject = "bug!"
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bug!", got.Subject)
	require.NotNil(t, got.Milestone)
	assert.Equal(t, "v1", got.Milestone.Subject)

	// returned copies do not alias the stored row
	got.Subject = "mutated"
	again, err := repo.GetByIDForUpdate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bug!", again.Subject)

	_, err = m.Attachments(m.Conn()).Create(ctx, &models.Attachment{IssueID: created.ID, OwnerID: owner.ID, StorageKey: "k"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), common.ErrorNotFound)
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	att, err := m.Attachments(m.Conn()).ListByIssue(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, att)
}

func TestMilestones(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	repo := m.Milestones(m.Conn())
	now := time.Now()

	_, err := repo.Create(ctx, &models.Milestone{Subject: "bad", StartDate: now, EndDate: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = repo.Create(ctx, &models.Milestone{Subject: "later", StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Milestone{Subject: "sooner", StartDate: now, EndDate: now})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sooner", list[0].Subject)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAttachments(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	owner := seedUser(t, m, "alice")
	issue, err := m.Issues(m.Conn()).Create(ctx, &models.Issue{Subject: "s", OwnerID: owner.ID})
	require.NoError(t, err)
	repo := m.Attachments(m.Conn())

	_, err = repo.Create(ctx, &models.Attachment{IssueID: 99})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	a, err := repo.Create(ctx, &models.Attachment{
		IssueID: issue.ID, OwnerID: owner.ID, FileName: "a.txt", StorageKey: "k", UploadStatus: common.UploadStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkUploaded(ctx, a.ID))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, common.UploadStatusCompleted, got.UploadStatus)

	assert.ErrorIs(t, repo.MarkUploaded(ctx, 99), common.ErrorNotFound)
}

func TestWithTx_Serializes(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.WithTx(ctx, func(context.Context, dbx.DBTX) error { return boom }), boom)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, m.WithTx(cctx, func(context.Context, dbx.DBTX) error { return nil }), context.Canceled)
	assert.ErrorIs(t, m.Ping(cctx), context.Canceled)
}
