package cmd

import (
	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

var departmentsCmd = &cobra.Command{
	Use:     "departments",
	Aliases: []string{"depts"},
	Short:   "Department commands",
}

var departmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		list, err := e.svc.Gateway().ListDepartments(e.ctx, e.sess)
		if err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		list = listquery.Departments(list, listquery.DepartmentCriteria{Search: search, Sort: sortFlag(cmd)}, locale())
		list = limitFlag(cmd, list)

		return output.Print(e.format, list, func() *output.Table {
			t := output.NewTable("ID", "NAME", "DESCRIPTION")
			for _, d := range list {
				t.AddRow(d.ID, d.Name, orDash(d.Description))
			}
			return t
		})
	},
}

func departmentInput(cmd *cobra.Command) records.DepartmentInput {
	var in records.DepartmentInput
	in.Name, _ = cmd.Flags().GetString("name")
	in.Description, _ = cmd.Flags().GetString("description")
	return in
}

var departmentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a department",
	Long:  "Create a department. The description needs at least 10 letters; only Latin or Thai letters and spaces are allowed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		in := departmentInput(cmd)
		if err := e.svc.SaveDepartment(e.ctx, e.sess, "", in); err != nil {
			return err
		}
		output.Success("Department %s created", in.Name)
		return nil
	},
}

var departmentsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Rename or redescribe a department",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.SaveDepartment(e.ctx, e.sess, args[0], departmentInput(cmd)); err != nil {
			return err
		}
		output.Success("Department updated")
		return nil
	},
}

var departmentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a department",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.DeleteDepartment(e.ctx, e.sess, args[0], confirmer(cmd)); err != nil {
			return err
		}
		output.Success("Department deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(departmentsCmd)
	departmentsCmd.AddCommand(departmentsListCmd, departmentsCreateCmd, departmentsUpdateCmd, departmentsDeleteCmd)

	addListFlags(departmentsListCmd)
	for _, c := range []*cobra.Command{departmentsCreateCmd, departmentsUpdateCmd} {
		c.Flags().String("name", "", "department name")
		c.Flags().String("description", "", "what the department does")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("description")
	}
}
