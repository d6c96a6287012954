package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/report"
)

// employeeView hides the salary from actors who may not see it.
type employeeView struct {
	ID           string              `json:"id"`
	UserID       string              `json:"userId"`
	FullName     string              `json:"fullName"`
	Role         records.Role        `json:"role"`
	Position     string              `json:"position,omitempty"`
	DepartmentID string              `json:"departmentId,omitempty"`
	Department   string              `json:"department,omitempty"`
	Salary       *decimal.Decimal    `json:"salary,omitempty"`
	Capabilities access.Capabilities `json:"capabilities"`
}

func newEmployeeView(actor records.Actor, e records.Employee) employeeView {
	v := employeeView{
		ID:           e.ID,
		UserID:       e.UserID,
		FullName:     e.FullName,
		Role:         e.Role,
		Position:     e.Position,
		DepartmentID: e.DepartmentID(),
		Department:   records.RefName(e.Department),
		Capabilities: access.For(actor, e),
	}
	if access.VisibleSalary(actor, e) {
		v.Salary = e.Salary
	}
	return v
}

func (v employeeView) salaryText(p *message.Printer) string {
	if v.Salary == nil {
		return "-"
	}
	return report.FormatAmount(p, *v.Salary)
}

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"employees"},
	Short:   "Employee directory commands",
	Long:    "List and manage the employees you are allowed to see",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Long: `List the employees visible to you. Administrators and HR see everyone,
managers see their department and employees see only themselves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		minSalary, _ := cmd.Flags().GetString("min-salary")
		maxSalary, _ := cmd.Flags().GetString("max-salary")
		bounds, err := listquery.ParseBounds(minSalary, maxSalary)
		if err != nil {
			return err
		}

		list, err := e.svc.Roster().Load(e.ctx, e.sess, e.sess.Actor)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		search, _ := cmd.Flags().GetString("search")
		role, _ := cmd.Flags().GetString("role")
		dept, _ := cmd.Flags().GetString("department")
		list = listquery.Employees(list, listquery.EmployeeCriteria{
			Search:     search,
			Role:       strings.ToUpper(role),
			Department: dept,
			Salary:     bounds,
			Sort:       sortFlag(cmd),
		}, locale())
		list = limitFlag(cmd, list)

		views := make([]employeeView, 0, len(list))
		for _, emp := range list {
			views = append(views, newEmployeeView(e.sess.Actor, emp))
		}
		return output.Print(e.format, views, func() *output.Table {
			p := message.NewPrinter(locale())
			t := output.NewTable("ID", "USER ID", "NAME", "ROLE", "POSITION", "DEPARTMENT", "SALARY")
			for _, v := range views {
				t.AddRow(v.ID, v.UserID, v.FullName, string(v.Role), orDash(v.Position), orDash(v.Department), v.salaryText(p))
			}
			return t
		})
	},
}

func printEmployee(format output.Format, v employeeView) error {
	if format != output.FormatTable {
		return output.Print(format, v, nil)
	}
	output.Info("Employee Details:")
	fmt.Fprintf(output.Stdout, "  ID:         %s\n", v.ID)
	fmt.Fprintf(output.Stdout, "  User ID:    %s\n", v.UserID)
	fmt.Fprintf(output.Stdout, "  Name:       %s\n", v.FullName)
	fmt.Fprintf(output.Stdout, "  Role:       %s\n", v.Role.Label())
	fmt.Fprintf(output.Stdout, "  Position:   %s\n", orDash(v.Position))
	fmt.Fprintf(output.Stdout, "  Department: %s\n", orDash(v.Department))
	fmt.Fprintf(output.Stdout, "  Salary:     %s\n", v.salaryText(message.NewPrinter(locale())))
	return nil
}

var usersGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		emp, err := e.svc.Roster().Find(e.ctx, e.sess, e.sess.Actor, args[0])
		if err != nil {
			return err
		}
		return printEmployee(e.format, newEmployeeView(e.sess.Actor, *emp))
	},
}

var usersMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your own employee record",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		emp, err := e.svc.Gateway().Profile(e.ctx, e.sess)
		if err != nil {
			return err
		}
		return printEmployee(e.format, newEmployeeView(e.sess.Actor, *emp))
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee",
	Long:  "Create an employee. --department takes a department ID or name.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		role, err := roleFlag(cmd, "role")
		if err != nil {
			return err
		}
		salaryText, _ := cmd.Flags().GetString("salary")
		salary, err := decimal.NewFromString(salaryText)
		if err != nil {
			return fmt.Errorf("invalid salary %q", salaryText)
		}

		in := records.NewEmployee{Role: role, Salary: salary}
		in.UserID, _ = cmd.Flags().GetString("user-id")
		in.FullName, _ = cmd.Flags().GetString("name")
		in.Password, _ = cmd.Flags().GetString("password")
		in.Position, _ = cmd.Flags().GetString("position")
		in.Department, _ = cmd.Flags().GetString("department")

		if err := e.svc.CreateEmployee(e.ctx, e.sess, in); err != nil {
			return err
		}
		output.Success("Employee %s created", in.UserID)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit an employee",
	Long:  "Edit an employee. Only the flags you pass are changed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		target, err := e.svc.Roster().Find(e.ctx, e.sess, e.sess.Actor, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		in := records.EmployeeUpdate{
			FullName:   target.FullName,
			Position:   target.Position,
			Department: target.DepartmentID(),
		}
		if flags.Changed("name") {
			in.FullName, _ = flags.GetString("name")
		}
		if flags.Changed("position") {
			in.Position, _ = flags.GetString("position")
		}
		if flags.Changed("department") {
			in.Department, _ = flags.GetString("department")
		}
		if flags.Changed("salary") {
			s, _ := flags.GetString("salary")
			salary, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("invalid salary %q", s)
			}
			in.Salary = &salary
		}
		if flags.Changed("role") {
			role, err := roleFlag(cmd, "role")
			if err != nil {
				return err
			}
			in.Role = &role
		}

		if err := e.svc.UpdateEmployee(e.ctx, e.sess, target.ID, in); err != nil {
			return err
		}
		output.Success("Employee %s updated", target.UserID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if err := e.svc.DeleteEmployee(e.ctx, e.sess, args[0], confirmer(cmd)); err != nil {
			return err
		}
		output.Success("Employee deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersMeCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)

	addListFlags(usersListCmd)
	usersListCmd.Flags().String("role", "", "only this role")
	usersListCmd.Flags().String("department", "", "only this department ID")
	usersListCmd.Flags().String("min-salary", "", "lowest salary")
	usersListCmd.Flags().String("max-salary", "", "highest salary")

	usersCreateCmd.Flags().String("user-id", "", "login ID (3-50 characters)")
	usersCreateCmd.Flags().String("name", "", "full name")
	usersCreateCmd.Flags().String("password", "", "initial password (at least 6 characters)")
	usersCreateCmd.Flags().String("role", string(records.RoleEmployee), "role")
	usersCreateCmd.Flags().String("position", "", "job title")
	usersCreateCmd.Flags().String("department", "", "department ID or name")
	usersCreateCmd.Flags().String("salary", "0", "monthly salary")
	for _, f := range []string{"user-id", "name", "password", "position", "department"} {
		_ = usersCreateCmd.MarkFlagRequired(f)
	}

	usersUpdateCmd.Flags().String("name", "", "full name")
	usersUpdateCmd.Flags().String("position", "", "job title")
	usersUpdateCmd.Flags().String("department", "", "department ID")
	usersUpdateCmd.Flags().String("salary", "", "monthly salary")
	usersUpdateCmd.Flags().String("role", "", "role")
}
