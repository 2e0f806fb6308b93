package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentService keeps attachment metadata in the store and hands out
// presigned S3 URLs for the content.
type AttachmentService struct {
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewAttachmentService(m repomanager.RepositoryManager, cfg *config.Config) *AttachmentService {
	return &AttachmentService{repomanager: m, config: cfg}
}

// GetRandomStorageKey returns a unique object key under the issue's prefix.
func GetRandomStorageKey(issueID int64) string {
	d := time.Now()
	return fmt.Sprintf("issues/%d/%d/%02d/%02d/%v", issueID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("error loading s3 config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// RequestUpload registers a pending attachment on the issue and returns the
// URL the client should PUT the content to. Only the issue owner may upload.
func (s *AttachmentService) RequestUpload(ctx context.Context, issueID int64, fileName string, requesterID int64) (*models.UploadTask, error) {
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "." || fileName == "/" {
		return nil, fmt.Errorf("file name is required: %w", common.ErrorValidation)
	}

	issue, err := s.repomanager.Issues(s.repomanager.Conn()).GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("error finding issue %d: %w", issueID, err)
	}
	if err := requireOwner(issue, requesterID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(issueID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	a, err := s.repomanager.Attachments(s.repomanager.Conn()).Create(ctx, &models.Attachment{
		IssueID:      issueID,
		OwnerID:      requesterID,
		FileName:     fileName,
		StorageKey:   key,
		UploadStatus: common.UploadStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating attachment: %w", err)
	}

	return &models.UploadTask{Attachment: a, URL: req.URL}, nil
}

// MarkUploaded is called by the uploader once the PUT has succeeded.
func (s *AttachmentService) MarkUploaded(ctx context.Context, attachmentID, requesterID int64) error {
	repo := s.repomanager.Attachments(s.repomanager.Conn())

	a, err := repo.GetByID(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("error finding attachment %d: %w", attachmentID, err)
	}
	if a.OwnerID != requesterID {
		return common.ErrorForbidden
	}
	if err := repo.MarkUploaded(ctx, attachmentID); err != nil {
		return fmt.Errorf("error updating attachment %d: %w", attachmentID, err)
	}
	return nil
}

// DownloadURL presigns a GET for a completed attachment. Pending uploads are
// reported as common.ErrorNotFound.
func (s *AttachmentService) DownloadURL(ctx context.Context, attachmentID int64) (string, error) {
	a, err := s.repomanager.Attachments(s.repomanager.Conn()).GetByID(ctx, attachmentID)
	if err != nil {
		return "", fmt.Errorf("error finding attachment %d: %w", attachmentID, err)
	}
	if a.UploadStatus != common.UploadStatusCompleted {
		return "", fmt.Errorf("attachment %d not uploaded: %w", attachmentID, common.ErrorNotFound)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket:                     &bucket,
		Key:                        &a.StorageKey,
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", a.FileName)),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return req.URL, nil
}

// List returns the attachments of an existing issue.
func (s *AttachmentService) List(ctx context.Context, issueID int64) ([]*models.Attachment, error) {
	if _, err := s.repomanager.Issues(s.repomanager.Conn()).GetByID(ctx, issueID); err != nil {
		return nil, fmt.Errorf("error finding issue %d: %w", issueID, err)
	}
	list, err := s.repomanager.Attachments(s.repomanager.Conn()).ListByIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}
	return list, nil
}
