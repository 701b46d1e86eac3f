package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/cli/commands"
	"github.com/fintrack-dev/fintrack/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the fintrack command tree around env. When env.Config is
// nil the environment is loaded before the first subcommand runs.
func NewRootCmd(env *commands.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fintrack",
		Short: "FinTrack - personal expense tracking",
		Long: `FinTrack CLI - track expenses and view spending reports.

Talks to the FinTrack user, expense and report services. The session is kept
in the OS keychain unless FINTRACK_SESSION_BACKEND says otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if env.Config != nil || cmd.Name() == "version" {
				return nil
			}

			loaded, err := commands.LoadEnv(cmd.OutOrStdout(), zerolog.Nop())
			if err != nil {
				return err
			}
			loaded.Logger = logger.New(loaded.Config.Logging.Level, loaded.Config.Logging.Format, cmd.ErrOrStderr())
			*env = *loaded
			return nil
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fintrack version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewStatusCmd(env))
	rootCmd.AddCommand(commands.NewExpensesCmd(env))
	rootCmd.AddCommand(commands.NewReportsCmd(env))
	rootCmd.AddCommand(commands.NewHealthCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	env := &commands.Env{}
	if err := run(NewRootCmd(env), env); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// run executes rootCmd and closes the session store even when the command fails
func run(rootCmd *cobra.Command, env *commands.Env) error {
	err := rootCmd.Execute()
	if env.Store != nil {
		err = errors.Join(err, env.Close())
	}
	return err
}
