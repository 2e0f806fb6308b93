// Package issues provides the PostgreSQL-backed issue repository.
package issues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

// PostgresRepository implements issue storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectJoined = `
	SELECT i.id, i.subject, i.comment, i.owner_id, i.milestone_id, i.created_at, i.updated_at,
		u.user_id, u.name,
		m.subject, m.start_date, m.end_date
	FROM issues i
	JOIN users u ON u.id = i.owner_id
	LEFT JOIN milestones m ON m.id = i.milestone_id`

// Create inserts issue and fills in ID, CreatedAt and UpdatedAt.
func (r *PostgresRepository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	query :=
		`INSERT INTO issues (subject, comment, owner_id, milestone_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, issue.Subject, issue.Comment, issue.OwnerID, issue.MilestoneID).
		Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return issue, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	row := r.db.QueryRowContext(ctx, selectJoined+` WHERE i.id = $1`, id)

	issue, err := scanJoined(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Issue, error) {
	query :=
		`SELECT id, subject, comment, owner_id, milestone_id, created_at, updated_at
		 FROM issues WHERE id = $1
		 FOR UPDATE`

	var (
		issue       models.Issue
		milestoneID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&issue.ID, &issue.Subject, &issue.Comment, &issue.OwnerID, &milestoneID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if milestoneID.Valid {
		issue.MilestoneID = &milestoneID.Int64
	}
	return &issue, nil
}

// List returns every issue ordered by id, owners and milestones resolved.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Issue, error) {
	rows, err := r.db.QueryContext(ctx, selectJoined+` ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select issues: %w", err)
	}
	defer rows.Close()

	var result []*models.Issue
	for rows.Next() {
		issue, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update persists subject, comment and milestone reference of issue.
func (r *PostgresRepository) Update(ctx context.Context, issue *models.Issue) error {
	query :=
		`UPDATE issues SET subject = $2, comment = $3, milestone_id = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, issue.ID, issue.Subject, issue.Comment, issue.MilestoneID).
		Scan(&issue.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJoined(s scanner) (*models.Issue, error) {
	var (
		issue       models.Issue
		owner       models.User
		milestoneID sql.NullInt64
		mSubject    sql.NullString
		mStart      sql.NullTime
		mEnd        sql.NullTime
	)

	err := s.Scan(
		&issue.ID, &issue.Subject, &issue.Comment, &issue.OwnerID, &milestoneID, &issue.CreatedAt, &issue.UpdatedAt,
		&owner.UserID, &owner.Name,
		&mSubject, &mStart, &mEnd,
	)
	if err != nil {
		return nil, err
	}

	owner.ID = issue.OwnerID
	issue.Owner = &owner

	if milestoneID.Valid {
		issue.MilestoneID = &milestoneID.Int64
		issue.Milestone = &models.Milestone{
			ID:        milestoneID.Int64,
			Subject:   mSubject.String,
			StartDate: mStart.Time,
			EndDate:   mEnd.Time,
		}
	}

	return &issue, nil
}
