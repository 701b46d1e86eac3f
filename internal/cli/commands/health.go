package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/health"
	"github.com/fintrack-dev/fintrack/internal/render"
)

// NewHealthCmd creates the health command
func NewHealthCmd(env *Env) *cobra.Command {
	var watch, strict bool
	var schedule string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the FinTrack services",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule == "" {
				schedule = env.Config.Health.Schedule
			}
			return runHealth(cmd, env, watch, schedule, strict)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep checking on a schedule until interrupted")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for --watch (default from HEALTH_SCHEDULE)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error unless every service is healthy")

	return cmd
}

func runHealth(cmd *cobra.Command, env *Env, watch bool, schedule string, strict bool) error {
	checker := health.NewChecker(env.Config.Health.Timeout, env.Logger)
	if env.HTTPClient != nil {
		checker.SetHTTPClient(env.HTTPClient)
	}
	poller := health.NewPoller(checker, health.DefaultServices(env.Config.Health), env.Logger)
	page := render.NewTerminalPage(env.Out, render.ServiceStatus)

	if watch {
		if err := health.ValidateSchedule(schedule); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return poller.Watch(ctx, schedule, page, func([]health.Result) {
			if err := page.Flush(); err != nil {
				env.Logger.Warn().Err(err).Msg("Failed to print service status")
			}
			fmt.Fprintln(env.Out)
		})
	}

	results := poller.Run(cmd.Context(), page)
	if err := page.Flush(); err != nil {
		return err
	}

	if strict {
		summary := health.Summarize(results)
		if !summary.AllHealthy {
			return fmt.Errorf("%d of %d services are not healthy", summary.Total-summary.Healthy, summary.Total)
		}
	}
	return nil
}
