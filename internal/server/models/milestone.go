package models

import "time"

// Milestone is a time-boxed grouping that issues reference by id.
type Milestone struct {
	ID        int64
	Subject   string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}
