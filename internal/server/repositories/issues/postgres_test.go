package issues

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var joinedColumns = []string{
	"id", "subject", "comment", "owner_id", "milestone_id", "created_at", "updated_at",
	"user_id", "name", "subject", "start_date", "end_date",
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	q := `(?s)^INSERT\s+INTO\s+issues\s*\(subject,\s*comment,\s*owner_id,\s*milestone_id\).*RETURNING\s+id,\s*created_at,\s*updated_at$`

	mock.ExpectQuery(q).
		WithArgs("testSubject", "testComment", int64(1), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	got, err := repo.Create(context.Background(), &models.Issue{Subject: "testSubject", Comment: "testComment", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(q).WillReturnError(errors.New("db down"))
	_, err = repo.Create(context.Background(), &models.Issue{Subject: "s", OwnerID: 1})
	assert.Regexp(t, `db error: .*db down`, err)
}

func TestGetByID_WithMilestone(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	start := now.Add(-time.Hour)

	mock.ExpectQuery(`(?s)^SELECT .* FROM issues i JOIN users u .* LEFT JOIN milestones m .* WHERE i\.id = \$1$`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(joinedColumns).
			AddRow(int64(1), "testSubject", "testComment", int64(7), int64(3), now, now,
				"javajigi", "Jaesung", "milestone", start, now))

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "testSubject", got.Subject)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Jaesung", got.Owner.Name)
	assert.Equal(t, int64(7), got.Owner.ID)
	require.NotNil(t, got.Milestone)
	assert.Equal(t, int64(3), *got.MilestoneID)
	assert.Equal(t, "milestone", got.Milestone.Subject)
}

func TestGetByID_NoMilestoneAndNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	q := `(?s)^SELECT .* WHERE i\.id = \$1$`

	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(joinedColumns).
			AddRow(int64(1), "s", "c", int64(7), nil, now, now, "javajigi", "Jaesung", nil, nil, nil))

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got.MilestoneID)
	assert.Nil(t, got.Milestone)

	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByIDForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	q := `(?s)^SELECT .* FROM issues WHERE id = \$1 FOR UPDATE$`

	mock.ExpectQuery(q).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject", "comment", "owner_id", "milestone_id", "created_at", "updated_at"}).
			AddRow(int64(4), "s", "c", int64(2), int64(5), now, now))

	got, err := repo.GetByIDForUpdate(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.OwnerID)
	assert.Equal(t, int64(5), *got.MilestoneID)

	mock.ExpectQuery(q).WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByIDForUpdate(context.Background(), 5)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	q := `(?s)^SELECT .* ORDER BY i\.id$`

	mock.ExpectQuery(q).
		WillReturnRows(sqlmock.NewRows(joinedColumns).
			AddRow(int64(1), "a", "", int64(1), nil, now, now, "javajigi", "Jaesung", nil, nil, nil).
			AddRow(int64(2), "b", "", int64(2), nil, now, now, "sanjigi", "Sanjigi", nil, nil, nil))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sanjigi", got[1].Owner.Name)

	mock.ExpectQuery(q).WillReturnError(errors.New("db err"))
	_, err = repo.List(context.Background())
	assert.Regexp(t, `failed to select issues: .*db err`, err)

	mock.ExpectQuery(q).
		WillReturnRows(sqlmock.NewRows(joinedColumns).
			AddRow(int64(1), "a", "", int64(1), nil, now, now, "javajigi", "Jaesung", nil, nil, nil).
			RowError(0, errors.New("row-err")))
	_, err = repo.List(context.Background())
	assert.EqualError(t, err, "row-err")
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^UPDATE issues SET subject = \$2, comment = \$3, milestone_id = \$4, updated_at = now\(\) WHERE id = \$1 RETURNING updated_at$`
	later := time.Now().Add(time.Minute)
	milestoneID := int64(3)

	mock.ExpectQuery(q).
		WithArgs(int64(1), "new", "body", &milestoneID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

	issue := &models.Issue{ID: 1, Subject: "new", Comment: "body", MilestoneID: &milestoneID}
	require.NoError(t, repo.Update(context.Background(), issue))
	assert.Equal(t, later, issue.UpdatedAt)

	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.Update(context.Background(), &models.Issue{ID: 2}), common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^DELETE FROM issues WHERE id = \$1$`

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), 1))

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 1), common.ErrorNotFound)

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	assert.EqualError(t, repo.Delete(context.Background(), 1), "unexpected rows affected: 2")

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
	assert.Regexp(t, `rows affected error: .*rows-err`, repo.Delete(context.Background(), 1))

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnError(errors.New("db down"))
	assert.Regexp(t, `db error: .*db down`, repo.Delete(context.Background(), 1))
}
