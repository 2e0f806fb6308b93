package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// Basic or Bearer credentials.
const AuthorizationHeaderName = "authorization"

// RequestIDHeaderName is echoed back on every HTTP response.
const RequestIDHeaderName = "X-Request-Id"

// Upload states of an attachment.
const (
	UploadStatusPending   = "pending"
	UploadStatusCompleted = "completed"
)
