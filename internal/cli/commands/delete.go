package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

// NewDeleteCmd creates the expenses rm command
func NewDeleteCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete an expense",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uint
			if len(args) == 1 {
				var err error
				if id, err = parseExpenseID(args[0]); err != nil {
					return err
				}
			}
			return runDelete(cmd, env, id, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, env *Env, id uint, yes bool) error {
	ctx := cmd.Context()
	if err := env.requireLogin(ctx); err != nil {
		return err
	}

	var (
		target *apiclient.Expense
		err    error
	)
	switch {
	case id != 0:
		if target, err = findExpense(cmd, env, id); err != nil {
			return err
		}
	case !env.Interactive:
		return fmt.Errorf("expense ID is required in non-interactive mode")
	default:
		expenses, err := fetchExpenses(cmd, env, apiclient.Params{})
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			return fmt.Errorf("no expenses to delete")
		}
		if target, err = selectExpense(expenses); err != nil {
			return err
		}
	}

	if !yes {
		if !env.Interactive {
			return fmt.Errorf("refusing to delete without confirmation (use --yes)")
		}
		ok, err := confirm(fmt.Sprintf("Delete expense #%d (%.2f %s)", target.ID, target.Amount, target.Category))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(env.Out, "Cancelled.")
			return nil
		}
	}

	resp, err := env.Client().Expenses.Delete(ctx, target.ID)
	if err := decode("delete expense", resp, err, nil); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "✓ Deleted expense #%d\n", target.ID)
	return nil
}

// lookupPageSize is the page size used while searching for an expense by id
const lookupPageSize = 100

// findExpense pages through the expense list until id turns up
func findExpense(cmd *cobra.Command, env *Env, id uint) (*apiclient.Expense, error) {
	var lastFirst uint
	for offset := 0; ; {
		expenses, err := fetchExpenses(cmd, env, apiclient.Params{
			"limit":  strconv.Itoa(lookupPageSize),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}
		for i := range expenses {
			if expenses[i].ID == id {
				return &expenses[i], nil
			}
		}
		// A backend that ignores offset keeps returning the same page
		if len(expenses) < lookupPageSize || expenses[0].ID == lastFirst {
			return nil, fmt.Errorf("expense #%d not found", id)
		}
		lastFirst = expenses[0].ID
		offset += len(expenses)
	}
}
