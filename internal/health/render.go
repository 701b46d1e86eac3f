package health

import (
	"strconv"

	"github.com/fintrack-dev/fintrack/internal/render"
)

// Row colour classes
const (
	ClassHealthy   = "text-green-600"
	ClassUnhealthy = "text-red-600"
)

// Rows converts results into display rows, one per service
func Rows(results []Result) []render.Row {
	rows := make([]render.Row, 0, len(results))
	for _, r := range results {
		class := ClassUnhealthy
		if r.Healthy() {
			class = ClassHealthy
		}
		rows = append(rows, render.Row{Label: r.Service, Value: label(r), Class: class})
	}
	return rows
}

func label(r Result) string {
	if r.StatusCode != 0 {
		return string(r.Status) + " (" + strconv.Itoa(r.StatusCode) + ")"
	}
	return string(r.Status)
}

// Render replaces the service status container with the results.
// Pages without the container are left untouched.
func Render(page render.Page, results []Result) {
	render.With(page, render.ServiceStatus, func(el render.Element) {
		el.SetRows(Rows(results))
	})
}
