package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/datemask"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

type bookingView struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	RoomID    string                `json:"roomId,omitempty"`
	Room      string                `json:"room,omitempty"`
	User      string                `json:"user,omitempty"`
	StartTime time.Time             `json:"startTime"`
	EndTime   time.Time             `json:"endTime"`
	Status    records.BookingStatus `json:"status"`
	CanCancel bool                  `json:"canCancel"`
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Room booking commands",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings",
	Long:  "List your own bookings, or every booking with --all. --date takes YYYY-MM-DD and matches the start date in UTC.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		scope := gateway.BookingsMy
		if all, _ := cmd.Flags().GetBool("all"); all {
			scope = gateway.BookingsAll
		}
		list, err := e.svc.Gateway().ListBookings(e.ctx, e.sess, scope)
		if err != nil {
			return err
		}

		search, _ := cmd.Flags().GetString("search")
		status, _ := cmd.Flags().GetString("status")
		date, _ := cmd.Flags().GetString("date")
		list = listquery.Bookings(list, listquery.BookingCriteria{
			Search: search,
			Status: strings.ToUpper(status),
			Date:   date,
			Sort:   sortFlag(cmd),
		}, locale())
		list = limitFlag(cmd, list)

		views := make([]bookingView, 0, len(list))
		for _, bk := range list {
			views = append(views, bookingView{
				ID:        bk.ID,
				Title:     bk.Title,
				RoomID:    records.RefID(bk.Room),
				Room:      records.RefName(bk.Room),
				User:      records.RefName(bk.User),
				StartTime: bk.StartTime,
				EndTime:   bk.EndTime,
				Status:    bk.Status,
				CanCancel: access.CanCancelBooking(e.sess.Actor, bk),
			})
		}
		return output.Print(e.format, views, func() *output.Table {
			t := output.NewTable("ID", "TITLE", "ROOM", "BY", "START", "END", "STATUS")
			for _, v := range views {
				t.AddRow(v.ID, v.Title, orDash(v.Room), orDash(v.User), formatTime(v.StartTime), formatTime(v.EndTime), string(v.Status))
			}
			return t
		})
	},
}

// bookingWindow reads either --start/--end (RFC 3339) or --date with
// --from/--to clock times in the configured timezone.
func bookingWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	flags := cmd.Flags()
	date, _ := flags.GetString("date")
	if date != "" {
		loc, err := cfg.Location()
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from, _ := flags.GetString("from")
		to, _ := flags.GetString("to")
		masked := datemask.Format(date)
		start, err := datemask.At(masked, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
		end, err := datemask.At(masked, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
		return start, end, nil
	}

	startText, _ := flags.GetString("start")
	endText, _ := flags.GetString("end")
	if startText == "" || endText == "" {
		return time.Time{}, time.Time{}, errors.New("give --date with --from and --to, or --start and --end")
	}
	start, err := time.Parse(time.RFC3339, startText)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, endText)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must be an RFC 3339 timestamp")
	}
	return start, end, nil
}

var bookingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a meeting room",
	Example: `  orgctl bookings create --room r1 --title "Standup" --date 27/02/2026 --from 09:00 --to 09:30
  orgctl bookings create --room r1 --title "Review" --start 2026-02-27T02:00:00Z --end 2026-02-27T03:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		start, end, err := bookingWindow(cmd)
		if err != nil {
			return err
		}
		in := records.BookingInput{StartTime: start, EndTime: end}
		in.RoomID, _ = cmd.Flags().GetString("room")
		in.Title, _ = cmd.Flags().GetString("title")
		in.Title = strings.TrimSpace(in.Title)

		if err := e.svc.BookRoom(e.ctx, e.sess, in); err != nil {
			return err
		}
		output.Success("Booked %s to %s", formatTime(start), formatTime(end))
		return nil
	},
}

var bookingsCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a booking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.CancelBooking(e.ctx, e.sess, args[0], confirmer(cmd)); err != nil {
			return err
		}
		output.Success("Booking cancelled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(bookingsListCmd, bookingsCreateCmd, bookingsCancelCmd)

	addListFlags(bookingsListCmd)
	bookingsListCmd.Flags().Bool("all", false, "list every booking, not just yours")
	bookingsListCmd.Flags().String("status", "", "PENDING, APPROVED or CANCELLED")
	bookingsListCmd.Flags().String("date", "", "start date prefix, e.g. 2026-02 or 2026-02-27")

	f := bookingsCreateCmd.Flags()
	f.String("room", "", "room ID")
	f.String("title", "", "what the meeting is for")
	f.String("date", "", "day as DD/MM/YYYY (digits alone are fine)")
	f.String("from", "", "start time HH:MM, with --date")
	f.String("to", "", "end time HH:MM, with --date")
	f.String("start", "", "start as an RFC 3339 timestamp")
	f.String("end", "", "end as an RFC 3339 timestamp")
	_ = bookingsCreateCmd.MarkFlagRequired("room")
	_ = bookingsCreateCmd.MarkFlagRequired("title")
	bookingsCreateCmd.MarkFlagsMutuallyExclusive("date", "start")
}
