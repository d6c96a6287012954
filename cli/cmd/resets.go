package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

var resetsCmd = &cobra.Command{
	Use:   "resets",
	Short: "Password reset requests (administrators)",
}

var resetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reset requests awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		list, err := e.svc.PendingResets(e.ctx, e.sess)
		if err != nil {
			return err
		}
		return output.Print(e.format, list, func() *output.Table {
			t := output.NewTable("ID", "USER ID", "NAME", "STATUS", "REQUESTED")
			for _, r := range list {
				var userID, name string
				if r.User != nil {
					userID, name = r.User.UserID, r.User.Name
				}
				t.AddRow(r.ID, orDash(userID), orDash(name), orDash(r.Status), formatTime(r.CreatedAt))
			}
			return t
		})
	},
}

var resetsApproveCmd = &cobra.Command{
	Use:   "approve [request-id]",
	Short: "Approve a reset request and print the reset link",
	Long: `Approve a pending reset request. The record API issues a one-time token
and the resulting reset link is printed for you to pass on to the employee.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		pending, err := e.svc.PendingResets(e.ctx, e.sess)
		if err != nil {
			return err
		}
		var req *records.ResetRequest
		for i := range pending {
			if pending[i].ID == args[0] {
				req = &pending[i]
				break
			}
		}
		if req == nil {
			return &gateway.RemoteError{Status: 404, Message: fmt.Sprintf("reset request %s not found", args[0])}
		}

		return e.svc.ApproveReset(e.ctx, e.sess, *req, confirmer(cmd), func(_ context.Context, link string) error {
			if e.format != output.FormatTable {
				return output.Print(e.format, map[string]string{"requestId": req.ID, "link": link}, nil)
			}
			output.Success("Reset approved for %s", req.User.UserID)
			output.Info("Reset link: %s", link)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resetsCmd)
	resetsCmd.AddCommand(resetsListCmd, resetsApproveCmd)
}
