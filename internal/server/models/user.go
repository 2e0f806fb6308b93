package models

import "time"

// User is an authentication principal. UserID is the login name used with
// Basic credentials; ID is the numeric key other records reference.
type User struct {
	ID           int64
	UserID       string
	Name         string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
