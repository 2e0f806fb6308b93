package httpapi

import (
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/server/models"
)

type milestoneView struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type issueView struct {
	ID        int64          `json:"id"`
	Subject   string         `json:"subject"`
	Comment   string         `json:"comment"`
	OwnerID   int64          `json:"owner_id"`
	OwnerName string         `json:"owner_name,omitempty"`
	Milestone *milestoneView `json:"milestone,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type attachmentView struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	FileName  string    `json:"file_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type uploadView struct {
	Attachment attachmentView `json:"attachment"`
	UploadURL  string         `json:"upload_url"`
}

type userView struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type tokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newMilestoneView(m *models.Milestone) milestoneView {
	return milestoneView{ID: m.ID, Subject: m.Subject, StartDate: m.StartDate, EndDate: m.EndDate}
}

func newIssueView(i *models.Issue) issueView {
	v := issueView{
		ID:        i.ID,
		Subject:   i.Subject,
		Comment:   i.Comment,
		OwnerID:   i.OwnerID,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
	if i.Owner != nil {
		v.OwnerName = i.Owner.Name
	}
	if i.Milestone != nil {
		m := newMilestoneView(i.Milestone)
		v.Milestone = &m
	}
	return v
}

func newAttachmentView(a *models.Attachment) attachmentView {
	return attachmentView{ID: a.ID, IssueID: a.IssueID, FileName: a.FileName, Status: a.UploadStatus, CreatedAt: a.CreatedAt}
}
