package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

var termIsTerminal = term.IsTerminal

// readPassword prompts for a password without echo
func readPassword(env *Env, flagHint string) (string, error) {
	if !env.Interactive {
		return "", fmt.Errorf("password is required in non-interactive mode (use %s)", flagHint)
	}

	fmt.Fprint(env.Out, "Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(env.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// confirm asks a yes/no question; a "no" is not an error
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// selectExpense lets the user pick one expense from a list
func selectExpense(expenses []apiclient.Expense) (*apiclient.Expense, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Category | cyan }} {{ .Amount }} {{ .Description }}",
		Inactive: "  {{ .Category }} {{ .Amount }} {{ .Description }}",
		Selected: "{{ .Category | green }} {{ .Amount }}",
	}

	prompt := promptui.Select{
		Label:     "Select an expense",
		Items:     expenses,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("expense selection cancelled: %w", err)
	}

	return &expenses[index], nil
}
