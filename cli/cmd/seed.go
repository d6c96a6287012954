package cmd

import (
	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/internal/seeder"
	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the directory with fake departments and employees",
	Long: `Generate realistic departments and employees and create them through the
record API as the signed-in user. Administrators and HR only; the roles given
to seeded employees are limited to those you may assign.

Examples:
  # A small organization
  orgctl seed

  # Reproducible data in existing departments
  orgctl seed --departments 0 --employees 100 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}

		sc := seeder.DefaultConfig()
		flags := cmd.Flags()
		sc.Departments, _ = flags.GetInt("departments")
		sc.Employees, _ = flags.GetInt("employees")
		sc.Password, _ = flags.GetString("password")
		sc.Seed, _ = flags.GetInt64("seed")

		level, _ := flags.GetString("log-level")
		logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(level), "text")

		res, err := seeder.NewRunner(e.svc, e.sess, logger).Run(e.ctx, sc)
		if err != nil {
			return err
		}
		if e.format != output.FormatTable {
			return output.Print(e.format, res, nil)
		}
		output.Success("Seeded %d departments and %d employees", res.Departments, res.Employees)
		if res.Failed > 0 {
			output.Warn("%d records were rejected", res.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	d := seeder.DefaultConfig()
	seedCmd.Flags().Int("departments", d.Departments, "departments to create")
	seedCmd.Flags().Int("employees", d.Employees, "employees to create")
	seedCmd.Flags().String("password", d.Password, "password for every seeded employee")
	seedCmd.Flags().Int64("seed", 0, "random seed for reproducible data (0 for random)")
	seedCmd.Flags().String("log-level", "info", "progress log level")
}
