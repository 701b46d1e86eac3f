package commands

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

// NewReportsCmd creates the reports command group
func NewReportsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "View spending reports",
	}

	cmd.AddCommand(newReportsListCmd(env))
	cmd.AddCommand(newReportsMonthlyCmd(env))

	return cmd
}

func newReportsListCmd(env *Env) *cobra.Command {
	var reportType string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportsList(cmd, env, reportType)
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "monthly", "Report type (monthly, annual)")

	return cmd
}

func runReportsList(cmd *cobra.Command, env *Env, reportType string) error {
	if err := env.requireLogin(cmd.Context()); err != nil {
		return err
	}

	resp, err := env.Client().Reports.List(cmd.Context(), apiclient.Params{"type": reportType})
	var list apiclient.ReportList
	if err := decode("list reports", resp, err, &list); err != nil {
		return err
	}

	if len(list.Reports) == 0 {
		fmt.Fprintln(env.Out, "No reports found.")
		fmt.Fprintln(env.Out, "\nGenerate one with: fintrack reports monthly")
		return nil
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tTYPE\tEXPENSES\tTOTAL")
	fmt.Fprintln(w, "──────\t────\t────────\t─────")

	for _, r := range list.Reports {
		data, err := r.Summary()
		if err != nil {
			env.Logger.Warn().Err(err).Uint("report_id", r.ID).Msg("Skipping unreadable report")
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", r.Period, r.Type, data.ExpenseCount, data.TotalExpenses)
	}

	return w.Flush()
}

func newReportsMonthlyCmd(env *Env) *cobra.Command {
	now := time.Now()
	var year, month int

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Show the report for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month %d", month)
			}
			return runReportsMonthly(cmd, env, year, month)
		},
	}

	cmd.Flags().IntVar(&year, "year", now.Year(), "Year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Month (1-12)")

	return cmd
}

func runReportsMonthly(cmd *cobra.Command, env *Env, year, month int) error {
	if err := env.requireLogin(cmd.Context()); err != nil {
		return err
	}

	resp, err := env.Client().Reports.Monthly(cmd.Context(), apiclient.Params{
		"year":  strconv.Itoa(year),
		"month": strconv.Itoa(month),
	})
	var report apiclient.Report
	if err := decode("load monthly report", resp, err, &report); err != nil {
		return err
	}

	data, err := report.Summary()
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "Report for %s\n", report.Period)
	fmt.Fprintf(env.Out, "  Total:    %.2f\n", data.TotalExpenses)
	fmt.Fprintf(env.Out, "  Expenses: %d\n", data.ExpenseCount)

	if len(data.Categories) == 0 {
		return nil
	}

	categories := make([]string, 0, len(data.Categories))
	for name := range data.Categories {
		categories = append(categories, name)
	}
	sort.Slice(categories, func(i, j int) bool {
		return data.Categories[categories[i]] > data.Categories[categories[j]]
	})

	fmt.Fprintln(env.Out)
	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tAMOUNT")
	fmt.Fprintln(w, "────────\t──────")
	for _, name := range categories {
		fmt.Fprintf(w, "%s\t%.2f\n", name, data.Categories[name])
	}
	return w.Flush()
}
