package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orgspace-systems/orgspace-stack/cli/internal/config"
	"github.com/orgspace-systems/orgspace-stack/cli/pkg/output"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
)

// Version is set at build time with -ldflags "-X .../cli/cmd.Version=...".
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "orgctl",
	Short: "OrgSpace CLI",
	Long: `orgctl is the command-line interface for OrgSpace.

Sign in, manage employees, departments and meeting rooms, review the audit
log, approve password resets and export signed reports from your terminal.
Every command runs the same access checks as the web console.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		output.Stdout = cmd.OutOrStdout()
		output.Stderr = cmd.ErrOrStderr()
		return loadConfig()
	},
}

// Execute runs the root command and reports a failure once, in the same
// words the web console would use.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(err)
	}
	return err
}

func reportError(err error) {
	o := actions.Classify(err)
	switch o.Kind {
	case actions.KindCancelled:
		output.Warn("Cancelled")
	case actions.KindSession:
		output.Error("%s", o.Message)
		output.Info("Run 'orgctl login' to sign in again.")
	case actions.KindValidation:
		output.Error("Invalid input")
		for field, msg := range o.Fields {
			fmt.Fprintf(output.Stderr, "  %s: %s\n", field, msg)
		}
	case actions.KindInternal:
		output.Error("%v", err)
	default:
		output.Error("%s", o.Message)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.orgctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use (default: current profile)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("api-url", "", "record API URL (default from profile/config/env)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "answer yes to every confirmation")
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		output.Warn("Could not load config: %v", err)
		path := cfgFile
		if path == "" {
			path, _ = config.DefaultPath()
		}
		cfg = config.Default(path)
	}
	return nil
}
