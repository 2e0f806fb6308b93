package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreMode = config.StoreMemory
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	return c
}

func TestOpenStore_UnknownMode(t *testing.T) {
	c := memoryConfig()
	c.StoreMode = "sqlite"
	_, err := OpenStore(context.Background(), c)
	assert.ErrorContains(t, err, "unknown store mode")
}

func TestOpenStore_PostgresUnreachable(t *testing.T) {
	c := memoryConfig()
	c.StoreMode = config.StorePostgres
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1"

	_, err := OpenStore(context.Background(), c)
	assert.ErrorContains(t, err, "db init error")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunStopsWhenServerFails(t *testing.T) {
	c := memoryConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c, logging.NewNopLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after server failure")
	}
}
