package models

import "time"

// Attachment describes a file stored in object storage for an issue. The
// content itself never passes through the server; clients use presigned URLs.
type Attachment struct {
	ID           int64
	IssueID      int64
	OwnerID      int64
	FileName     string
	StorageKey   string
	UploadStatus string
	CreatedAt    time.Time
}

// UploadTask tells the client where to PUT the attachment content.
type UploadTask struct {
	Attachment *Attachment
	URL        string
}
