package models

import "time"

// Issue is a trackable unit of work. Milestone is only populated on reads
// that resolve the MilestoneID reference.
type Issue struct {
	ID          int64
	Subject     string
	Comment     string
	OwnerID     int64
	MilestoneID *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner     *User
	Milestone *Milestone
}

// IsOwnedBy reports whether userID created the issue.
func (i *Issue) IsOwnedBy(userID int64) bool {
	return i.OwnerID == userID
}
