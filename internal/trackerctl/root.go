// Package trackerctl implements the administrative command line: schema
// migrations and user provisioning against the configured store.
package trackerctl

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dsn        string
	storeMode  string
	logger     logging.Logger
}

// loadConfig starts from defaults, overlays the config file and then the
// flags that were set explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	if o.configPath != "" {
		if err := cfg.ApplyFile(o.configPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("dsn") {
		cfg.DatabaseDSN = o.dsn
	}
	if cmd.Flags().Changed("store") {
		cfg.StoreMode = o.storeMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) openStore(ctx context.Context, cmd *cobra.Command) (*config.Config, repomanager.RepositoryManager, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	m, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, m, nil
}

// NewRootCommand builds the trackerctl command tree. Diagnostics go to
// errOut as JSON log lines.
func NewRootCommand(errOut io.Writer) *cobra.Command {
	o := &options{logger: logging.NewJSONLogger(errOut, slog.LevelInfo)}

	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Administer an issuetracker installation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "JSON or YAML config file")
	root.PersistentFlags().StringVarP(&o.dsn, "dsn", "d", "", "PostgreSQL DSN")
	root.PersistentFlags().StringVarP(&o.storeMode, "store", "m", config.StorePostgres, "store mode: postgres or memory")

	root.AddCommand(newMigrateCommand(o), newUserCommand(o))
	return root
}
