package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
)

var (
	profileEmail    string
	profileUsername string
	profileFullName string
	profilePhone    string
	profileBio      string

	passwordChange apiclient.PasswordChange
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit the signed-in user's profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, err := application.Account.Me(cmd.Context())
		if err != nil {
			return err
		}
		v := newUserView(user)
		return render(cmd, v, func(w io.Writer) { printUser(w, v) })
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields; only flags that are set are sent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var upd apiclient.ProfileUpdate
		f := cmd.Flags()
		if f.Changed("email") {
			upd.Email = &profileEmail
		}
		if f.Changed("username") {
			upd.Username = &profileUsername
		}
		if f.Changed("full-name") {
			upd.FullName = &profileFullName
		}
		if f.Changed("phone") {
			upd.Phone = &profilePhone
		}
		if f.Changed("bio") {
			upd.Bio = &profileBio
		}
		user, err := application.Account.UpdateProfile(cmd.Context(), upd)
		if err != nil {
			return err
		}
		v := newUserView(user)
		return render(cmd, v, func(w io.Writer) {
			fmt.Fprintln(w, "Profile updated.")
			printUser(w, v)
		})
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := application.Account.UpdatePassword(cmd.Context(), passwordChange); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
		return nil
	},
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileEmail, "email", "", "New email address")
	f.StringVar(&profileUsername, "username", "", "New username")
	f.StringVar(&profileFullName, "full-name", "", "New full name")
	f.StringVar(&profilePhone, "phone", "", "New phone number")
	f.StringVar(&profileBio, "bio", "", "New bio")

	profilePasswordCmd.Flags().StringVar(&passwordChange.CurrentPassword, "current", "", "Current password")
	profilePasswordCmd.Flags().StringVar(&passwordChange.NewPassword, "new", "", "New password")
	_ = profilePasswordCmd.MarkFlagRequired("current")
	_ = profilePasswordCmd.MarkFlagRequired("new")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profilePasswordCmd)
	rootCmd.AddCommand(profileCmd)
}
