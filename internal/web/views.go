package web

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/render"
)

// view is the data every page template receives
type view struct {
	Title   string
	Page    *render.MemoryPage
	Error   string
	Version string

	Form     any
	Expenses []apiclient.Expense
	Total    float64
	Reports  []reportView
	Monthly  *reportView
}

type reportView struct {
	apiclient.Report
	Data       apiclient.ReportData
	Categories []categoryTotal
}

type categoryTotal struct {
	Name   string
	Amount float64
}

func newReportView(r apiclient.Report) reportView {
	rv := reportView{Report: r}

	data, err := r.Summary()
	if err != nil {
		return rv
	}
	rv.Data = data

	for name, amount := range data.Categories {
		rv.Categories = append(rv.Categories, categoryTotal{Name: name, Amount: amount})
	}
	sort.Slice(rv.Categories, func(i, j int) bool {
		return rv.Categories[i].Amount > rv.Categories[j].Amount
	})
	return rv
}

func (s *Server) render(c *gin.Context, status int, name string, v view) {
	v.Page = scopeOf(c).page
	v.Version = s.version
	c.HTML(status, name, v)
}

// backendFailure turns a request client error into a message for the page.
// It returns handled=true when the request was answered with a redirect.
func (s *Server) backendFailure(c *gin.Context, err error) (message string, status int, handled bool) {
	sc := scopeOf(c)

	if errors.Is(err, apiclient.ErrSessionExpired) {
		sc.nav.redirect(c)
		return "", 0, true
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error(), http.StatusBadGateway, false
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		return apiErr.Message, status, false
	}

	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Backend request failed")
	return "Something went wrong. Please try again.", http.StatusInternalServerError, false
}
