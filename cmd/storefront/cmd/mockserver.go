package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/internal/fakeapi"
	"github.com/dmitrymomot/storefront/pkg/config"
)

var (
	mockAddr      string
	mockUsers     []string
	mockAccessTTL time.Duration
	mockEmpty     bool
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory storefront API for local development",
	Long: `Starts a self-contained storefront API with sample categories and products.
State lives in memory and is lost on exit. Users are given as
email:username:password and may be repeated.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noApp: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		var cfg fakeapi.ServeConfig
		if err := config.Load(&cfg); err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") || cfg.Addr == "" {
			cfg.Addr = mockAddr
		}

		opts := []fakeapi.Option{fakeapi.WithLogger(log)}
		if !mockEmpty {
			opts = append(opts, fakeapi.WithSampleData())
		}
		if mockAccessTTL > 0 {
			opts = append(opts, fakeapi.WithTokenTTL(mockAccessTTL, 7*24*time.Hour))
		}
		srv := fakeapi.New(opts...)

		for _, entry := range mockUsers {
			email, username, password, ok := splitUser(entry)
			if !ok {
				return fmt.Errorf("invalid user %q: want email:username:password", entry)
			}
			if _, err := srv.AddUser(email, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s ready.\n", username)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s%s (Ctrl+C to stop)\n", cfg.Addr, fakeapi.BasePath)
		return srv.ListenAndServe(cmd.Context(), cfg)
	},
}

func init() {
	f := mockServerCmd.Flags()
	f.StringVar(&mockAddr, "addr", "127.0.0.1:8000", "Listen address")
	f.StringArrayVar(&mockUsers, "user", []string{"demo@example.com:demo:demo1234"}, "Seed user as email:username:password")
	f.DurationVar(&mockAccessTTL, "access-ttl", 0, "Access token lifetime (default 30m)")
	f.BoolVar(&mockEmpty, "empty", false, "Start without sample products")
	rootCmd.AddCommand(mockServerCmd)
}

func splitUser(s string) (email, username, password string, ok bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
