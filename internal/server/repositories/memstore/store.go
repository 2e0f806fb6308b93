package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type store struct {
	mu sync.RWMutex

	users       map[int64]models.User
	issues      map[int64]models.Issue
	milestones  map[int64]models.Milestone
	attachments map[int64]models.Attachment

	lastUserID       int64
	lastIssueID      int64
	lastMilestoneID  int64
	lastAttachmentID int64
}

func newStore() *store {
	return &store{
		users:       make(map[int64]models.User),
		issues:      make(map[int64]models.Issue),
		milestones:  make(map[int64]models.Milestone),
		attachments: make(map[int64]models.Attachment),
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

type userRepo struct{ s *store }

func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.UserID == u.UserID {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.lastUserID++
	u.ID = r.s.lastUserID
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return u, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, userID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.UserID == userID {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type issueRepo struct{ s *store }

func (r *issueRepo) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[issue.OwnerID]; !ok {
		return nil, fmt.Errorf("owner %d: %w", issue.OwnerID, common.ErrorNotFound)
	}
	if issue.MilestoneID != nil {
		if _, ok := r.s.milestones[*issue.MilestoneID]; !ok {
			return nil, fmt.Errorf("milestone %d: %w", *issue.MilestoneID, common.ErrorNotFound)
		}
	}

	r.s.lastIssueID++
	now := time.Now()
	issue.ID = r.s.lastIssueID
	issue.CreatedAt = now
	issue.UpdatedAt = now

	stored := *issue
	stored.MilestoneID = copyID(issue.MilestoneID)
	stored.Owner, stored.Milestone = nil, nil
	r.s.issues[issue.ID] = stored
	return issue, nil
}

// resolve returns a copy of issue with owner and milestone filled in.
// Callers hold s.mu.
func (r *issueRepo) resolve(issue models.Issue) *models.Issue {
	issue.MilestoneID = copyID(issue.MilestoneID)
	if u, ok := r.s.users[issue.OwnerID]; ok {
		issue.Owner = &models.User{ID: u.ID, UserID: u.UserID, Name: u.Name}
	}
	if issue.MilestoneID != nil {
		if m, ok := r.s.milestones[*issue.MilestoneID]; ok {
			issue.Milestone = &m
		}
	}
	return &issue
}

func (r *issueRepo) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.resolve(issue), nil
}

func (r *issueRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	issue.MilestoneID = copyID(issue.MilestoneID)
	return &issue, nil
}

func (r *issueRepo) List(ctx context.Context) ([]*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.Issue
	for _, id := range sortedKeys(r.s.issues) {
		result = append(result, r.resolve(r.s.issues[id]))
	}
	return result, nil
}

func (r *issueRepo) Update(ctx context.Context, issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.issues[issue.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if issue.MilestoneID != nil {
		if _, ok := r.s.milestones[*issue.MilestoneID]; !ok {
			return fmt.Errorf("milestone %d: %w", *issue.MilestoneID, common.ErrorNotFound)
		}
	}

	stored.Subject = issue.Subject
	stored.Comment = issue.Comment
	stored.MilestoneID = copyID(issue.MilestoneID)
	stored.UpdatedAt = time.Now()
	issue.UpdatedAt = stored.UpdatedAt
	r.s.issues[issue.ID] = stored
	return nil
}

// Delete removes the issue together with its attachments.
func (r *issueRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.issues, id)
	for aid, a := range r.s.attachments {
		if a.IssueID == id {
			delete(r.s.attachments, aid)
		}
	}
	return nil
}

type milestoneRepo struct{ s *store }

func (r *milestoneRepo) Create(ctx context.Context, m *models.Milestone) (*models.Milestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m.StartDate.After(m.EndDate) {
		return nil, fmt.Errorf("milestone dates: %w", common.ErrorValidation)
	}
	r.s.lastMilestoneID++
	m.ID = r.s.lastMilestoneID
	m.CreatedAt = time.Now()
	r.s.milestones[m.ID] = *m
	return m, nil
}

func (r *milestoneRepo) GetByID(ctx context.Context, id int64) (*models.Milestone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.milestones[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (r *milestoneRepo) List(ctx context.Context) ([]*models.Milestone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.Milestone
	for _, id := range sortedKeys(r.s.milestones) {
		m := r.s.milestones[id]
		result = append(result, &m)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

type attachmentRepo struct{ s *store }

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[a.IssueID]; !ok {
		return nil, fmt.Errorf("issue %d: %w", a.IssueID, common.ErrorNotFound)
	}
	r.s.lastAttachmentID++
	a.ID = r.s.lastAttachmentID
	a.CreatedAt = time.Now()
	r.s.attachments[a.ID] = *a
	return a, nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.attachments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *attachmentRepo) ListByIssue(ctx context.Context, issueID int64) ([]*models.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*models.Attachment
	for _, id := range sortedKeys(r.s.attachments) {
		if a := r.s.attachments[id]; a.IssueID == issueID {
			result = append(result, &a)
		}
	}
	return result, nil
}

func (r *attachmentRepo) MarkUploaded(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attachments[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.UploadStatus = common.UploadStatusCompleted
	r.s.attachments[id] = a
	return nil
}
