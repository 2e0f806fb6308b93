package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPresign replaces the S3 seams for the duration of the test.
func stubPresign(t *testing.T, putErr, getErr error) *[]string {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		presignPutObject = origPut
		presignGetObject = origGet
	})

	var keys []string

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
		assert.True(t, opts.UsePathStyle)
		return s3.NewFromConfig(cfg, optFns...)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if putErr != nil {
			return nil, putErr
		}
		assert.Equal(t, "attachments", aws.ToString(in.Bucket))
		keys = append(keys, aws.ToString(in.Key))
		return &v4.PresignedHTTPRequest{URL: "https://s3/put/" + aws.ToString(in.Key)}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if getErr != nil {
			return nil, getErr
		}
		return &v4.PresignedHTTPRequest{URL: "https://s3/get/" + aws.ToString(in.Key)}, nil
	}
	return &keys
}

func TestGetRandomStorageKey(t *testing.T) {
	k1 := GetRandomStorageKey(7)
	k2 := GetRandomStorageKey(7)
	assert.True(t, strings.HasPrefix(k1, "issues/7/"))
	assert.NotEqual(t, k1, k2)
}

func TestAttachmentService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	keys := stubPresign(t, nil, nil)
	svc := NewAttachmentService(env.manager, env.config)

	issue, err := env.issues.Add(ctx, IssueDto{Subject: "s"}, env.alice.ID)
	require.NoError(t, err)

	_, err = svc.RequestUpload(ctx, issue.ID, "log.txt", env.bob.ID)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = svc.RequestUpload(ctx, 99, "log.txt", env.alice.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = svc.RequestUpload(ctx, issue.ID, "  ", env.alice.ID)
	assert.ErrorIs(t, err, common.ErrorValidation)

	task, err := svc.RequestUpload(ctx, issue.ID, "../../etc/log.txt", env.alice.ID)
	require.NoError(t, err)
	require.Len(t, *keys, 1)
	assert.Equal(t, "log.txt", task.Attachment.FileName)
	assert.Equal(t, common.UploadStatusPending, task.Attachment.UploadStatus)
	assert.Equal(t, "https://s3/put/"+(*keys)[0], task.URL)

	_, err = svc.DownloadURL(ctx, task.Attachment.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, svc.MarkUploaded(ctx, task.Attachment.ID, env.bob.ID), common.ErrorForbidden)
	assert.ErrorIs(t, svc.MarkUploaded(ctx, 99, env.alice.ID), common.ErrorNotFound)
	require.NoError(t, svc.MarkUploaded(ctx, task.Attachment.ID, env.alice.ID))

	url, err := svc.DownloadURL(ctx, task.Attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/get/"+(*keys)[0], url)

	list, err := svc.List(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.List(ctx, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAttachmentService_PresignErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAttachmentService(env.manager, env.config)

	issue, err := env.issues.Add(ctx, IssueDto{Subject: "s"}, env.alice.ID)
	require.NoError(t, err)

	stubPresign(t, errors.New("put boom"), nil)
	_, err = svc.RequestUpload(ctx, issue.ID, "a.txt", env.alice.ID)
	assert.ErrorContains(t, err, "put boom")

	list, err := svc.List(ctx, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("cfg boom")
	}
	_, err = svc.RequestUpload(ctx, issue.ID, "a.txt", env.alice.ID)
	assert.ErrorContains(t, err, "cfg boom")
}
