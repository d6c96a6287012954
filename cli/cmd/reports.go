package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/audit"
	"github.com/orgspace-systems/orgspace-stack/common/report"
)

type stampView struct {
	File      string    `json:"file"`
	ReportID  string    `json:"reportId"`
	IssuedAt  time.Time `json:"issuedAt"`
	IssuedBy  string    `json:"issuedBy"`
	Signature string    `json:"signature,omitempty"`
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Export and verify employee reports (administrators and HR)",
}

var reportsEmployeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Export the employee report as CSV or PDF",
	Long: `Download the employee report and write it as a spreadsheet-friendly CSV
(UTF-8 BOM, grouped salaries) or a printable PDF roster.

When report_secret is configured the file is signed, and the printed stamp
can later be checked with 'orgctl reports verify'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		actor := e.sess.Actor
		if !access.CanAccess(actor, access.PageReports) {
			return fmt.Errorf("%w: reports are for administrators and HR", access.ErrForbidden)
		}
		format, _ := cmd.Flags().GetString("format")
		format = strings.ToLower(format)
		if format != "csv" && format != "pdf" {
			return fmt.Errorf("unknown report format %q (want csv or pdf)", format)
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		raw, err := e.svc.Gateway().ExportUsersReport(e.ctx, e.sess)
		if err != nil {
			return err
		}

		issuedAt := now()
		reportID := audit.NewReportID()
		var body []byte
		if format == "csv" {
			body, err = report.EnhanceCSV(raw, locale())
		} else {
			var rows []report.Row
			rows, err = report.Rows(raw, locale())
			if err == nil {
				issuedBy := actor.FullName
				if issuedBy == "" {
					issuedBy = actor.UserID
				}
				body, err = report.RosterPDF(rows, report.RosterMeta{
					Organization: cfg.Organization,
					IssuedBy:     issuedBy,
					IssuedAt:     issuedAt.In(loc),
					ReportID:     reportID,
				})
			}
		}
		if errors.Is(err, report.ErrEmpty) {
			return errors.New("there are no employees to export")
		}
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = report.Filename(issuedAt.In(loc), format)
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		view := stampView{File: path, ReportID: reportID, IssuedAt: issuedAt.UTC(), IssuedBy: actor.UserID}
		if cfg.ReportSecret != "" {
			stamp := audit.NewReportSigner(cfg.ReportSecret).Stamp(reportID, actor.UserID, issuedAt, body)
			view.IssuedAt, view.Signature = stamp.IssuedAt, stamp.Signature
		}
		if e.format != output.FormatTable {
			return output.Print(e.format, view, nil)
		}

		output.Success("Report written to %s", path)
		output.Info("Report ID: %s", view.ReportID)
		output.Info("Issued:    %s by %s", view.IssuedAt.Format(time.RFC3339Nano), view.IssuedBy)
		if view.Signature == "" {
			output.Warn("report_secret is not set; the report is unsigned")
		} else {
			output.Info("Signature: %s", view.Signature)
		}
		return nil
	},
}

var reportsVerifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Check that a report file was issued with this secret and is unaltered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ReportSecret == "" {
			return errors.New("report_secret is not set")
		}
		body, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		by, _ := flags.GetString("issued-by")
		sig, _ := flags.GetString("signature")
		at, _ := flags.GetString("issued-at")
		issuedAt, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return fmt.Errorf("--issued-at must be an RFC 3339 timestamp")
		}

		if !audit.NewReportSigner(cfg.ReportSecret).Verify(id, issuedAt, by, body, sig) {
			return errors.New("signature does not match: the file was altered or not issued with this secret")
		}
		output.Success("Report %s is authentic", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsEmployeesCmd, reportsVerifyCmd)

	reportsEmployeesCmd.Flags().String("format", "csv", "csv or pdf")
	reportsEmployeesCmd.Flags().StringP("file", "f", "", "where to write the report (default: employee-report_<date>.<format>)")

	f := reportsVerifyCmd.Flags()
	f.String("id", "", "report ID")
	f.String("issued-at", "", "issue time as printed at export")
	f.String("issued-by", "", "user ID of the issuer")
	f.String("signature", "", "hex signature")
	for _, name := range []string{"id", "issued-at", "issued-by", "signature"} {
		_ = reportsVerifyCmd.MarkFlagRequired(name)
	}
}
