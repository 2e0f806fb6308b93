package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

type MilestoneService struct {
	repomanager repomanager.RepositoryManager
}

func NewMilestoneService(m repomanager.RepositoryManager) *MilestoneService {
	return &MilestoneService{repomanager: m}
}

// Create validates and stores a milestone. The start date must not be after
// the end date.
func (s *MilestoneService) Create(ctx context.Context, input MilestoneDto) (*models.Milestone, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, fmt.Errorf("subject is required: %w", common.ErrorValidation)
	}
	start, err := ParseDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("start date is after end date: %w", common.ErrorValidation)
	}

	repo := s.repomanager.Milestones(s.repomanager.Conn())
	m, err := repo.Create(ctx, &models.Milestone{Subject: subject, StartDate: start, EndDate: end})
	if err != nil {
		return nil, fmt.Errorf("error creating milestone: %w", err)
	}
	return m, nil
}

func (s *MilestoneService) FindByID(ctx context.Context, id int64) (*models.Milestone, error) {
	m, err := s.repomanager.Milestones(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding milestone %d: %w", id, err)
	}
	return m, nil
}

func (s *MilestoneService) List(ctx context.Context) ([]*models.Milestone, error) {
	list, err := s.repomanager.Milestones(s.repomanager.Conn()).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing milestones: %w", err)
	}
	return list, nil
}
