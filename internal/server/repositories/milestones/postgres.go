// Package milestones provides the PostgreSQL-backed milestone repository.
package milestones

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Milestone) (*models.Milestone, error) {
	query :=
		`INSERT INTO milestones (subject, start_date, end_date)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, m.Subject, m.StartDate, m.EndDate).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Milestone, error) {
	query :=
		`SELECT id, subject, start_date, end_date, created_at FROM milestones
		 WHERE id = $1`

	var m models.Milestone
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Subject, &m.StartDate, &m.EndDate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Milestone, error) {
	query := `SELECT id, subject, start_date, end_date, created_at FROM milestones ORDER BY start_date, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select milestones: %w", err)
	}
	defer rows.Close()

	var result []*models.Milestone
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(&m.ID, &m.Subject, &m.StartDate, &m.EndDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
