// Package attachments provides PostgreSQL-backed metadata storage for issue
// attachments. The content itself lives in object storage.
package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

// PostgresRepository implements attachment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending attachment record.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query :=
		`INSERT INTO attachments (issue_id, owner_id, file_name, storage_key, upload_status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, a.IssueID, a.OwnerID, a.FileName, a.StorageKey, a.UploadStatus).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	query :=
		`SELECT id, issue_id, owner_id, file_name, storage_key, upload_status, created_at
		 FROM attachments WHERE id = $1`

	var a models.Attachment
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.IssueID, &a.OwnerID, &a.FileName, &a.StorageKey, &a.UploadStatus, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

// ListByIssue returns the attachments of issueID in creation order.
func (r *PostgresRepository) ListByIssue(ctx context.Context, issueID int64) ([]*models.Attachment, error) {
	query :=
		`SELECT id, issue_id, owner_id, file_name, storage_key, upload_status, created_at
		 FROM attachments WHERE issue_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.IssueID, &a.OwnerID, &a.FileName, &a.StorageKey, &a.UploadStatus, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkUploaded flips the attachment to the completed state.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, id int64) error {
	query := `UPDATE attachments SET upload_status = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, common.UploadStatusCompleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
