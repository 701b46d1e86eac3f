package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

// NewExpensesCmd creates the expenses command group
func NewExpensesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "ex"},
		Short:   "Manage expenses",
	}

	cmd.AddCommand(newExpensesListCmd(env))
	cmd.AddCommand(newExpensesAddCmd(env))
	cmd.AddCommand(newExpensesUpdateCmd(env))
	cmd.AddCommand(NewDeleteCmd(env))

	return cmd
}

func newExpensesListCmd(env *Env) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := apiclient.Params{}
			if limit > 0 {
				params["limit"] = strconv.Itoa(limit)
			}
			if offset > 0 {
				params["offset"] = strconv.Itoa(offset)
			}
			return runExpensesList(cmd, env, params)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of expenses (service default if 0)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of expenses to skip")

	return cmd
}

func fetchExpenses(cmd *cobra.Command, env *Env, params apiclient.Params) ([]apiclient.Expense, error) {
	resp, err := env.Client().Expenses.List(cmd.Context(), params)
	var list apiclient.ExpenseList
	if err := decode("list expenses", resp, err, &list); err != nil {
		return nil, err
	}
	return list.Expenses, nil
}

func runExpensesList(cmd *cobra.Command, env *Env, params apiclient.Params) error {
	if err := env.requireLogin(cmd.Context()); err != nil {
		return err
	}

	expenses, err := fetchExpenses(cmd, env, params)
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		fmt.Fprintln(env.Out, "No expenses found.")
		fmt.Fprintln(env.Out, "\nAdd one with: fintrack expenses add --amount 12.50 --category food")
		return nil
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	fmt.Fprintln(w, "──\t────\t────────\t──────\t───────────")

	var total float64
	for _, e := range expenses {
		total += e.Amount
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n",
			e.ID,
			e.Date.Format("2006-01-02"),
			e.Category,
			e.Amount,
			e.Description,
		)
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%.2f\t\n", total)

	return w.Flush()
}

// expenseFlags binds the fields of an expense request to command flags
func expenseFlags(cmd *cobra.Command, req *apiclient.ExpenseRequest) {
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "Amount spent")
	cmd.Flags().StringVar(&req.Category, "category", "", "Category, e.g. food")
	cmd.Flags().StringVar(&req.Description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&req.Date, "date", time.Now().Format("2006-01-02"), "Date as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
}

func newExpensesAddCmd(env *Env) *cobra.Command {
	var req apiclient.ExpenseRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpensesAdd(cmd, env, req)
		},
	}
	expenseFlags(cmd, &req)

	return cmd
}

func runExpensesAdd(cmd *cobra.Command, env *Env, req apiclient.ExpenseRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}
	if err := env.requireLogin(cmd.Context()); err != nil {
		return err
	}

	resp, err := env.Client().Expenses.Create(cmd.Context(), req)
	var created apiclient.Expense
	if err := decode("add expense", resp, err, &created); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "✓ Added expense #%d: %.2f (%s)\n", created.ID, created.Amount, created.Category)
	return nil
}

func newExpensesUpdateCmd(env *Env) *cobra.Command {
	var req apiclient.ExpenseRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseExpenseID(args[0])
			if err != nil {
				return err
			}
			return runExpensesUpdate(cmd, env, id, req)
		},
	}
	expenseFlags(cmd, &req)

	return cmd
}

func runExpensesUpdate(cmd *cobra.Command, env *Env, id uint, req apiclient.ExpenseRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}
	if err := env.requireLogin(cmd.Context()); err != nil {
		return err
	}

	resp, err := env.Client().Expenses.Update(cmd.Context(), id, req)
	if err := decode("update expense", resp, err, nil); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "✓ Updated expense #%d\n", id)
	return nil
}

func parseExpenseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid expense ID %q", raw)
	}
	return uint(id), nil
}
