package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/internal/app"
	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

const (
	formatText = "text"
	formatYAML = "yaml"

	// Commands annotated with noApp run without a client application.
	noApp = "no-app"
)

var errUnknownFormat = errors.New("cli.unknown_output_format")

var (
	outputFormat string
	envFile      string

	log         *slog.Logger
	application *app.App
	stderr      io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API client",
	Long: `A command-line client for the storefront API: sign in, browse the catalog
and keep a local cart. Session tokens and the cart persist between runs.

Configuration is read from the environment (and an optional .env file).
See STOREFRONT_API_URL, STOREFRONT_STORE_DRIVER and STOREFRONT_DATA_DIR.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text or yaml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file")
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", apiclient.Message(err, err.Error()))
		_ = teardown(rootCmd, nil)
		return 1
	}
	return 0
}

func setup(cmd *cobra.Command, _ []string) error {
	switch outputFormat {
	case formatText, formatYAML:
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, outputFormat)
	}

	if envFile != "" {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
	}

	var cfg app.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "storefront"),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(stderr),
	}
	switch logger.Format(cfg.LogFormat) {
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	log = logger.New(opts...)

	if cmd.Annotations[noApp] != "" {
		return nil
	}

	a, err := app.New(cmd.Context(), cfg,
		app.WithLogger(log),
		app.WithSessionExpired(func(error) {
			fmt.Fprintln(stderr, "Your session has expired. Please log in again.")
		}),
	)
	if err != nil {
		return err
	}
	application = a
	return nil
}

func teardown(*cobra.Command, []string) error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	return err
}
