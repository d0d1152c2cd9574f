// Command kanji-trainer runs the kanji trainer: the HTTP adapter serving the
// training session, schema migrations for the SQL storage engines, and
// build information.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/kanji-trainer/internal/config"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/platform/migrations"
	"github.com/phrazzld/kanji-trainer/internal/schedule"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configFileEnv names the config file when --config is not given.
const configFileEnv = "KANJI_CONFIG_FILE"

type rootOptions struct {
	configFile string
}

func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "kanji-trainer",
		Short:         "Kanji reading and writing trainer with a character collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv(configFileEnv),
		"config file (default kanji-trainer.yaml in . or $HOME/.config/kanji-trainer)")

	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts), newVersionCmd())
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the trainer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log, schedule.Real{})
			if err != nil {
				return err
			}
			defer app.cleanup()
			return app.startHTTPServer(cmd.Context())
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(migrations.Commands, "|") + "]",
		Short:     "Manage the schema of the sqlite and postgres storage engines",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrations.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg.Storage, args[0], log)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "kanji-trainer %s\n", version)
}

func runMigrate(ctx context.Context, cfg config.StorageConfig, command string, log *slog.Logger) error {
	sqlDB, err := openSQLDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()
	return migrations.Run(ctx, sqlDB.db, sqlDB.dialect, sqlDB.migrations, command, log)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "kanji-trainer:", err)
		stop()
		os.Exit(1)
	}
}
