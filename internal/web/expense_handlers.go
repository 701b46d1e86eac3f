package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
)

// ExpenseForm is the add/edit expense form submission
type ExpenseForm struct {
	Amount      float64 `form:"amount" binding:"required,gt=0"`
	Description string  `form:"description"`
	Category    string  `form:"category" binding:"required"`
	Date        string  `form:"date" binding:"required,datetime=2006-01-02"`
}

func (f ExpenseForm) request() apiclient.ExpenseRequest {
	return apiclient.ExpenseRequest{
		Amount:      f.Amount,
		Description: f.Description,
		Category:    f.Category,
		Date:        f.Date,
	}
}

const expensesPath = "/expenses"

// dashboard shows recent expenses and this month's report
func (s *Server) dashboard(c *gin.Context) {
	sc := scopeOf(c)
	ctx := c.Request.Context()
	v := view{Title: "Dashboard"}

	expenses, err := s.fetchExpenses(c, apiclient.Params{"limit": "5"})
	if err != nil {
		message, status, handled := s.backendFailure(c, err)
		if handled {
			return
		}
		v.Error = message
		s.render(c, status, "dashboard", v)
		return
	}
	v.Expenses = expenses

	now := time.Now()
	resp, err := sc.client.Reports.Monthly(ctx, apiclient.Params{
		"year":  strconv.Itoa(now.Year()),
		"month": strconv.Itoa(int(now.Month())),
	})
	var monthly apiclient.Report
	if err == nil {
		err = apiclient.DecodeJSON(resp, &monthly)
	}
	if err != nil {
		message, _, handled := s.backendFailure(c, err)
		if handled {
			return
		}
		// The recent expenses are still worth showing
		v.Error = message
	} else {
		rv := newReportView(monthly)
		v.Monthly = &rv
		v.Total = rv.Data.TotalExpenses
	}

	s.render(c, http.StatusOK, "dashboard", v)
}

func (s *Server) fetchExpenses(c *gin.Context, params apiclient.Params) ([]apiclient.Expense, error) {
	resp, err := scopeOf(c).client.Expenses.List(c.Request.Context(), params)
	if err != nil {
		return nil, err
	}
	var list apiclient.ExpenseList
	if err := apiclient.DecodeJSON(resp, &list); err != nil {
		return nil, err
	}
	return list.Expenses, nil
}

func (s *Server) listExpenses(c *gin.Context) {
	s.renderExpenses(c, http.StatusOK, ExpenseForm{Date: time.Now().Format("2006-01-02")}, "")
}

// renderExpenses shows the expense list with the add form and an optional error
func (s *Server) renderExpenses(c *gin.Context, status int, form ExpenseForm, message string) {
	params := apiclient.Params{}
	for _, key := range []string{"limit", "offset"} {
		if value := c.Query(key); value != "" {
			params[key] = value
		}
	}

	v := view{Title: "Expenses", Form: form, Error: message}

	expenses, err := s.fetchExpenses(c, params)
	if err != nil {
		fetchMessage, fetchStatus, handled := s.backendFailure(c, err)
		if handled {
			return
		}
		if v.Error == "" {
			v.Error = fetchMessage
			status = fetchStatus
		}
	}
	v.Expenses = expenses
	for _, e := range expenses {
		v.Total += e.Amount
	}

	s.render(c, status, "expenses", v)
}

func (s *Server) createExpense(c *gin.Context) {
	var form ExpenseForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderExpenses(c, http.StatusBadRequest, form, "Enter a positive amount, a category and a date (YYYY-MM-DD).")
		return
	}

	resp, err := scopeOf(c).client.Expenses.Create(c.Request.Context(), form.request())
	if err == nil {
		err = apiclient.DecodeJSON(resp, nil)
	}
	s.afterExpenseChange(c, form, err)
}

func (s *Server) updateExpense(c *gin.Context) {
	id, ok := expenseID(c)
	if !ok {
		s.renderExpenses(c, http.StatusBadRequest, ExpenseForm{}, "Invalid expense ID")
		return
	}

	var form ExpenseForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderExpenses(c, http.StatusBadRequest, form, "Enter a positive amount, a category and a date (YYYY-MM-DD).")
		return
	}

	resp, err := scopeOf(c).client.Expenses.Update(c.Request.Context(), id, form.request())
	if err == nil {
		err = apiclient.DecodeJSON(resp, nil)
	}
	s.afterExpenseChange(c, form, err)
}

func (s *Server) deleteExpense(c *gin.Context) {
	id, ok := expenseID(c)
	if !ok {
		s.renderExpenses(c, http.StatusBadRequest, ExpenseForm{}, "Invalid expense ID")
		return
	}

	resp, err := scopeOf(c).client.Expenses.Delete(c.Request.Context(), id)
	if err == nil {
		err = apiclient.DecodeJSON(resp, nil)
	}
	s.afterExpenseChange(c, ExpenseForm{}, err)
}

func (s *Server) afterExpenseChange(c *gin.Context, form ExpenseForm, err error) {
	if err != nil {
		message, status, handled := s.backendFailure(c, err)
		if handled {
			return
		}
		s.renderExpenses(c, status, form, message)
		return
	}
	c.Redirect(http.StatusSeeOther, expensesPath)
}

func expenseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
