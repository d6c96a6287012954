package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

type roomView struct {
	records.Room
	// Occupied is nil when bookings could not be loaded.
	Occupied *bool `json:"occupied,omitempty"`
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Meeting room commands",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meeting rooms and whether they are in use now",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		minCap, _ := cmd.Flags().GetString("min-capacity")
		bounds, err := listquery.ParseBounds(minCap, "")
		if err != nil {
			return err
		}

		list, err := e.svc.Gateway().ListRooms(e.ctx, e.sess)
		if err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		list = listquery.Rooms(list, listquery.RoomCriteria{Search: search, Capacity: bounds, Sort: sortFlag(cmd)}, locale())
		list = limitFlag(cmd, list)

		// Occupancy is informational; the list still prints without it.
		bookings, bErr := e.svc.Gateway().ListBookings(e.ctx, e.sess, gateway.BookingsAll)
		if bErr != nil {
			output.Warn("Occupancy unavailable: %v", bErr)
		}
		at := now()
		views := make([]roomView, 0, len(list))
		for _, r := range list {
			v := roomView{Room: r}
			if bErr == nil {
				occupied := records.RoomOccupied(r, bookings, at)
				v.Occupied = &occupied
			}
			views = append(views, v)
		}

		return output.Print(e.format, views, func() *output.Table {
			t := output.NewTable("ID", "NAME", "CAPACITY", "NOW")
			for _, v := range views {
				state := "-"
				if v.Occupied != nil {
					state = "available"
					if *v.Occupied {
						state = "occupied"
					}
				}
				t.AddRow(v.ID, v.Name, strconv.Itoa(v.Capacity), state)
			}
			return t
		})
	},
}

func roomInput(cmd *cobra.Command) records.RoomInput {
	var in records.RoomInput
	in.Name, _ = cmd.Flags().GetString("name")
	in.Capacity, _ = cmd.Flags().GetInt("capacity")
	return in
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a meeting room",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		in := roomInput(cmd)
		if err := e.svc.SaveRoom(e.ctx, e.sess, "", in); err != nil {
			return err
		}
		output.Success("Room %s created", in.Name)
		return nil
	},
}

var roomsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit a meeting room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.SaveRoom(e.ctx, e.sess, args[0], roomInput(cmd)); err != nil {
			return err
		}
		output.Success("Room updated")
		return nil
	},
}

var roomsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a meeting room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.DeleteRoom(e.ctx, e.sess, args[0], confirmer(cmd)); err != nil {
			return err
		}
		output.Success("Room deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(roomsListCmd, roomsCreateCmd, roomsUpdateCmd, roomsDeleteCmd)

	addListFlags(roomsListCmd)
	roomsListCmd.Flags().String("min-capacity", "", "only rooms seating at least this many")

	for _, c := range []*cobra.Command{roomsCreateCmd, roomsUpdateCmd} {
		c.Flags().String("name", "", "room name")
		c.Flags().Int("capacity", 0, "number of seats")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("capacity")
	}
}
