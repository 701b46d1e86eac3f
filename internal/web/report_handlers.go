package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/health"
)

// reports lists stored reports and, when year and month are given, the
// monthly report for that period
func (s *Server) reports(c *gin.Context) {
	sc := scopeOf(c)
	ctx := c.Request.Context()
	v := view{Title: "Reports"}

	resp, err := sc.client.Reports.List(ctx, apiclient.Params{"type": c.DefaultQuery("type", "monthly")})
	var list apiclient.ReportList
	if err == nil {
		err = apiclient.DecodeJSON(resp, &list)
	}
	if err != nil {
		message, status, handled := s.backendFailure(c, err)
		if handled {
			return
		}
		v.Error = message
		s.render(c, status, "reports", v)
		return
	}
	for _, r := range list.Reports {
		v.Reports = append(v.Reports, newReportView(r))
	}

	year, month := c.Query("year"), c.Query("month")
	if year != "" && month != "" {
		resp, err := sc.client.Reports.Monthly(ctx, apiclient.Params{"year": year, "month": month})
		var monthly apiclient.Report
		if err == nil {
			err = apiclient.DecodeJSON(resp, &monthly)
		}
		if err != nil {
			message, _, handled := s.backendFailure(c, err)
			if handled {
				return
			}
			v.Error = message
		} else {
			rv := newReportView(monthly)
			v.Monthly = &rv
		}
	}

	s.render(c, http.StatusOK, "reports", v)
}

// apiHealth probes every backend service and reports the results as JSON
func (s *Server) apiHealth(c *gin.Context) {
	results := s.checker.Check(c.Request.Context(), s.poller.Services())
	c.JSON(http.StatusOK, gin.H{
		"services": results,
		"summary":  health.Summarize(results),
	})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "web-frontend",
		"version": s.version,
	})
}
