// Package cli implements the aigen command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feitianbubu/aigen"
	"github.com/feitianbubu/aigen/config"
	"github.com/feitianbubu/aigen/internal/logging"
)

var (
	cfgFile    string
	logLevel   string
	providerID string
)

var rootCmd = &cobra.Command{
	Use:           "aigen",
	Short:         "Chat, caption, image and video generation against configurable providers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/aigen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what every generation command needs.
type env struct {
	cfg    *config.Config
	store  *config.Store
	logger *zap.Logger
	client *aigen.Client
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "aigen.yaml"
	}
	return filepath.Join(dir, "aigen", "config.yaml")
}

func setup() (*env, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	opts := cfg.LogOptions()
	if logLevel != "" {
		opts.Level = logLevel
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(logger)

	return &env{
		cfg:    cfg,
		store:  config.NewStore(path),
		logger: logger,
		client: aigen.NewClient(cfg.ClientConfig(logger)),
	}, nil
}

// provider returns the --provider entry, or the default for capability.
func (e *env) provider(capability aigen.Capability) (aigen.ProviderConfig, error) {
	if providerID != "" {
		return e.store.Get(providerID)
	}
	p, ok, err := e.store.Default(capability)
	if err != nil {
		return aigen.ProviderConfig{}, err
	}
	if !ok {
		return aigen.ProviderConfig{}, errors.Errorf("no %s provider configured; add one or pass --provider", capability)
	}
	return p, nil
}

func addProviderFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "provider id (default: the capability's default provider)")
}
