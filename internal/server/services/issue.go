// Package services contains server-side business logic. Services receive a
// RepositoryManager at construction and translate transfer objects into
// entities, enforce existence and ownership, and return the sentinel errors
// of package common (possibly wrapped).
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/dbx"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

type IssueService struct {
	repomanager repomanager.RepositoryManager
}

func NewIssueService(m repomanager.RepositoryManager) *IssueService {
	return &IssueService{repomanager: m}
}

// requireOwner guards every mutation of an issue.
func requireOwner(issue *models.Issue, requesterID int64) error {
	if !issue.IsOwnedBy(requesterID) {
		return common.ErrorForbidden
	}
	return nil
}

// Add creates an issue owned by ownerID.
func (s *IssueService) Add(ctx context.Context, input IssueDto, ownerID int64) (*models.Issue, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Issues(s.repomanager.Conn())
	issue, err := repo.Create(ctx, &models.Issue{
		Subject: input.Subject,
		Comment: input.Comment,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating issue: %w", err)
	}
	return issue, nil
}

// FindByID returns the issue with owner and milestone resolved, or
// common.ErrorNotFound.
func (s *IssueService) FindByID(ctx context.Context, id int64) (*models.Issue, error) {
	repo := s.repomanager.Issues(s.repomanager.Conn())
	issue, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding issue %d: %w", id, err)
	}
	return issue, nil
}

func (s *IssueService) List(ctx context.Context) ([]*models.Issue, error) {
	repo := s.repomanager.Issues(s.repomanager.Conn())
	list, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing issues: %w", err)
	}
	return list, nil
}

// Update replaces subject and comment. The row is locked between the
// ownership check and the write.
func (s *IssueService) Update(ctx context.Context, id int64, input IssueDto, requesterID int64) (*models.Issue, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Issues(tx)

		issue, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(issue, requesterID); err != nil {
			return err
		}

		issue.Subject = input.Subject
		issue.Comment = input.Comment
		return repo.Update(ctx, issue)
	})
	if err != nil {
		return nil, fmt.Errorf("error updating issue %d: %w", id, err)
	}

	return s.FindByID(ctx, id)
}

// Delete removes the issue. Deleting a missing issue yields common.ErrorNotFound.
func (s *IssueService) Delete(ctx context.Context, id int64, requesterID int64) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Issues(tx)

		issue, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(issue, requesterID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting issue %d: %w", id, err)
	}
	return nil
}

// AttachMilestone points the issue at milestoneID.
func (s *IssueService) AttachMilestone(ctx context.Context, issueID, milestoneID, requesterID int64) (*models.Issue, error) {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Issues(tx)

		issue, err := repo.GetByIDForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		milestone, err := s.repomanager.Milestones(tx).GetByID(ctx, milestoneID)
		if err != nil {
			return fmt.Errorf("milestone %d: %w", milestoneID, err)
		}
		if err := requireOwner(issue, requesterID); err != nil {
			return err
		}

		issue.MilestoneID = &milestone.ID
		return repo.Update(ctx, issue)
	})
	if err != nil {
		return nil, fmt.Errorf("error attaching milestone to issue %d: %w", issueID, err)
	}

	return s.FindByID(ctx, issueID)
}
