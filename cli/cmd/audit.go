package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log commands (administrators)",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if !access.CanAccess(e.sess.Actor, access.PageAuditLogs) {
			return fmt.Errorf("%w: audit logs are for administrators", access.ErrForbidden)
		}
		list, err := e.svc.Gateway().ListAuditLogs(e.ctx, e.sess)
		if err != nil {
			return err
		}

		search, _ := cmd.Flags().GetString("search")
		action, _ := cmd.Flags().GetString("action")
		subject, _ := cmd.Flags().GetString("subject")
		date, _ := cmd.Flags().GetString("date")
		if strings.EqualFold(subject, listquery.All) {
			subject = ""
		}
		sort := sortFlag(cmd)
		if sort.Field == "" {
			sort = listquery.SortState{Field: "createdAt", Direction: listquery.Desc}
		}
		list = listquery.AuditLogs(list, listquery.AuditCriteria{
			Search:  search,
			Action:  strings.ToUpper(action),
			Subject: strings.ToLower(subject),
			Date:    date,
			Sort:    sort,
		}, locale())
		list = limitFlag(cmd, list)

		return output.Print(e.format, list, func() *output.Table {
			t := output.NewTable("WHEN", "ACTOR", "ACTION", "TARGET", "DETAILS")
			for _, a := range list {
				t.AddRow(formatTime(a.CreatedAt), orDash(a.ActorName()), a.Action.Category().Label, orDash(a.TargetName), orDash(a.Details))
			}
			return t
		})
	},
}

var auditActionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the known audit action tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		type actionView struct {
			Action  records.AuditAction `json:"action"`
			Subject records.Subject     `json:"subject"`
			Verb    records.Verb        `json:"verb"`
			Label   string              `json:"label"`
		}
		var views []actionView
		for _, a := range records.AuditActions() {
			c := a.Category()
			views = append(views, actionView{Action: a, Subject: c.Subject, Verb: c.Verb, Label: c.Label})
		}
		return output.Print(format, views, func() *output.Table {
			t := output.NewTable("ACTION", "SUBJECT", "VERB", "LABEL")
			for _, v := range views {
				t.AddRow(string(v.Action), string(v.Subject), string(v.Verb), v.Label)
			}
			return t
		})
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditActionsCmd)

	addListFlags(auditListCmd)
	auditListCmd.Flags().String("action", "", "exact action tag, e.g. CREATE_USER")
	auditListCmd.Flags().String("subject", "", "action subject, e.g. user or booking")
	auditListCmd.Flags().String("date", "", "date prefix in UTC, e.g. 2026-02-27")
}
