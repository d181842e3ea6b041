package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

var (
	loginUsername string
	loginPassword string

	registerData apiclient.RegisterData
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session tokens",
	Long: `Signs in with a username (or email) and password. When --password is
omitted the password is read from the first line of standard input.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := passwordOrStdin(cmd, loginPassword)
		if err != nil {
			return err
		}
		user, err := application.Session.Login(cmd.Context(), apiclient.Credentials{
			Username: loginUsername,
			Password: password,
		})
		if err != nil {
			return err
		}
		return render(cmd, newUserView(user), func(w io.Writer) {
			fmt.Fprintf(w, "Logged in as %s.\n", user.DisplayName())
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data := registerData
		password, err := passwordOrStdin(cmd, data.Password)
		if err != nil {
			return err
		}
		data.Password = password
		user, err := application.Session.Register(cmd.Context(), data)
		if err != nil {
			return err
		}
		return render(cmd, newUserView(user), func(w io.Writer) {
			fmt.Fprintf(w, "Welcome, %s! Your account is ready.\n", user.DisplayName())
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application.Session.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, err := application.Session.ResolveIdentity(cmd.Context())
		if err != nil {
			return err
		}
		v := newUserView(user)
		return render(cmd, v, func(w io.Writer) { printUser(w, v) })
	},
}

type statusView struct {
	Authenticated bool       `yaml:"authenticated"`
	User          *userView  `yaml:"user,omitempty"`
	ExpiresAt     *time.Time `yaml:"expires_at,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the stored session is still valid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := application.Healthcheck(cmd.Context()); err != nil {
			fmt.Fprintln(stderr, "Warning: session store is unavailable:", err)
		}
		user, err := application.Session.CheckAuthStatus(cmd.Context())
		if err != nil {
			return err
		}
		var v statusView
		if user != nil {
			uv := newUserView(*user)
			v = statusView{Authenticated: true, User: &uv}
			if tokens := application.Session.State().Tokens; tokens != nil {
				if exp, ok := tokens.ExpiresAt(); ok {
					v.ExpiresAt = &exp
				}
			}
		}
		return render(cmd, v, func(w io.Writer) {
			if user == nil {
				fmt.Fprintln(w, "Not logged in.")
				return
			}
			fmt.Fprintf(w, "Logged in as %s (%s).\n", user.Username, user.Email)
			if v.ExpiresAt != nil {
				fmt.Fprintf(w, "Access token expires %s.\n", v.ExpiresAt.Local().Format(time.RFC1123))
			}
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("username")

	registerCmd.Flags().StringVar(&registerData.Email, "email", "", "Email address")
	registerCmd.Flags().StringVarP(&registerData.Username, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&registerData.Password, "password", "p", "", "Password (read from stdin when empty)")
	registerCmd.Flags().StringVar(&registerData.FullName, "full-name", "", "Full name")
	registerCmd.Flags().StringVar(&registerData.Phone, "phone", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, statusCmd)
}

func passwordOrStdin(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
