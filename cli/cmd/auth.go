package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/internal/config"
	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to OrgSpace",
	Long:  "Authenticate against the record API and save the session to the selected profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user-id")
		password, _ := cmd.Flags().GetString("password")

		var err error
		if userID == "" {
			if userID, err = readLine(cmd, "User ID: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = readLine(cmd, "Password: "); err != nil {
				return err
			}
		}

		svc := newService(cmd)
		sess, err := svc.SignIn(cmd.Context(), records.SignInInput{UserID: userID, Password: password})
		if err != nil {
			return err
		}

		name := profileName(cmd)
		p := &config.Profile{
			APIURL:      apiURL(cmd),
			AccessToken: sess.Token,
			Session:     config.SnapshotActor(sess.Actor),
			ExpiresAt:   sess.ExpiresAt,
		}
		if err := cfg.SaveProfile(name, p); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		output.Success("Signed in as %s (%s)", orDash(sess.Actor.FullName), sess.Actor.Role.Label())
		output.Info("Profile '%s' saved to %s", name, cfg.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of OrgSpace",
	Long:  "Remove the stored session of the selected profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := profileName(cmd)
		if err := cfg.RemoveProfile(name); err != nil {
			return err
		}
		output.Success("Signed out of profile '%s'", name)
		return nil
	},
}

type whoamiView struct {
	Profile    string         `json:"profile"`
	APIURL     string         `json:"apiUrl"`
	Actor      records.Actor  `json:"actor"`
	RoleLabel  string         `json:"roleLabel"`
	Pages      []access.Page  `json:"pages"`
	Assignable []records.Role `json:"assignableRoles"`
	ExpiresAt  string         `json:"expiresAt"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the signed-in user",
	Long:  "Show who the selected profile is signed in as and which console pages they may use",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}

		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			if err := e.svc.RefreshActor(e.ctx, e.sess); err != nil {
				return err
			}
			if cfg.Token == "" {
				p, err := cfg.GetProfile(e.sess.ID)
				if err != nil {
					return err
				}
				p.Session = config.SnapshotActor(e.sess.Actor)
				if err := cfg.Save(); err != nil {
					return fmt.Errorf("failed to save profile: %w", err)
				}
			}
		}

		actor := e.sess.Actor
		view := whoamiView{
			Profile:    e.sess.ID,
			APIURL:     apiURL(cmd),
			Actor:      actor,
			RoleLabel:  actor.Role.Label(),
			Pages:      access.Pages(actor),
			Assignable: access.AssignableRoles(actor),
			ExpiresAt:  formatTime(e.sess.ExpiresAt),
		}
		if e.format != output.FormatTable {
			return output.Print(e.format, view, nil)
		}

		output.Info("Profile:    %s", view.Profile)
		output.Info("User ID:    %s", actor.UserID)
		output.Info("Name:       %s", orDash(actor.FullName))
		output.Info("Role:       %s", view.RoleLabel)
		output.Info("Department: %s", orDash(records.RefName(actor.Department)))
		output.Info("Pages:      %v", view.Pages)
		output.Info("API URL:    %s", view.APIURL)
		output.Info("Expires:    %s", view.ExpiresAt)
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [user-id]",
	Short: "Ask an administrator for a password reset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService(cmd)
		if err := svc.ForgotPassword(cmd.Context(), records.ForgotPasswordInput{UserID: args[0]}); err != nil {
			return err
		}
		output.Success("Reset requested. An administrator will send you a reset link.")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password [token]",
	Short: "Set a new password with a reset token",
	Long:  "Consume the token from an approved reset link and set a new password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		confirm, _ := cmd.Flags().GetString("confirm")
		if password == "" {
			return errors.New("--password is required")
		}
		if confirm == "" {
			confirm = password
		}

		in := records.PasswordResetInput{Token: args[0], NewPassword: password, Confirm: confirm}
		if err := records.Validate(in); err != nil {
			return err
		}
		if err := newService(cmd).ConsumeReset(cmd.Context(), in); err != nil {
			return err
		}
		output.Success("Password changed. You can now run 'orgctl login'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, forgotPasswordCmd, resetPasswordCmd)

	loginCmd.Flags().StringP("user-id", "u", "", "User ID")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	whoamiCmd.Flags().Bool("refresh", false, "reload the identity from the record API")

	resetPasswordCmd.Flags().String("password", "", "new password (at least 6 characters)")
	resetPasswordCmd.Flags().String("confirm", "", "repeat the new password (default: same as --password)")
}
