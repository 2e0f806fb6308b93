package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
)

// IssueDto is the transport-neutral input for creating or updating an issue.
type IssueDto struct {
	Subject string `json:"subject"`
	Comment string `json:"comment"`
}

func (d IssueDto) normalize() (IssueDto, error) {
	d.Subject = strings.TrimSpace(d.Subject)
	if d.Subject == "" {
		return d, fmt.Errorf("subject is required: %w", common.ErrorValidation)
	}
	return d, nil
}

// MilestoneDto carries dates as text in any of dateLayouts.
type MilestoneDto struct {
	Subject   string `json:"subject"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 PM 03:04",
	"2006-01-02 PM 3:04",
}

// meridiem maps the Korean AM/PM markers produced by ko-KR date pickers.
var meridiem = strings.NewReplacer("오전", "AM", "오후", "PM")

// ParseDate accepts RFC 3339, the shorter "2006-01-02 15:04" form and the
// 12-hour "2006-01-02 오전 03:04" form. Zone-less values are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	normalized := meridiem.Replace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, common.ErrorValidation)
}
