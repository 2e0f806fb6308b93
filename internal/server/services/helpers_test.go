package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/memstore"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	manager    *memstore.Manager
	config     *config.Config
	users      *UserService
	issues     *IssueService
	milestones *MilestoneService

	alice *models.User
	bob   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m := memstore.NewManager()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		S3Region:                    "us-east-1",
		S3RootUser:                  "minioadmin",
		S3RootPassword:              "minioadmin",
		S3BaseEndpoint:              "http://127.0.0.1:9000",
		S3Bucket:                    "attachments",
	}
	env := &testEnv{
		manager:    m,
		config:     cfg,
		users:      NewUserService(m, cfg),
		issues:     NewIssueService(m),
		milestones: NewMilestoneService(m),
	}

	var err error
	env.alice, err = env.users.Register(context.Background(), "alice", "Alice", "pw-a")
	require.NoError(t, err)
	env.bob, err = env.users.Register(context.Background(), "bob", "Bob", "pw-b")
	require.NoError(t, err)
	return env
}
