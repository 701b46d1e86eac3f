package health

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fintrack-dev/fintrack/internal/render"
)

// Poller checks a fixed set of services and renders them onto a page
type Poller struct {
	checker  *Checker
	services []Service
	logger   zerolog.Logger
}

// NewPoller creates a poller for services
func NewPoller(checker *Checker, services []Service, logger zerolog.Logger) *Poller {
	return &Poller{
		checker:  checker,
		services: services,
		logger:   logger.With().Str("component", "health_poller").Logger(),
	}
}

// Services returns the probed services
func (p *Poller) Services() []Service { return p.services }

// Run checks all services once and renders the results. Failures anywhere in
// the pipeline are logged and swallowed; the returned results are nil then.
func (p *Poller) Run(ctx context.Context, page render.Page) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Failed to load service status")
			results = nil
		}
	}()

	results = p.checker.Check(ctx, p.services)
	Render(page, results)

	summary := Summarize(results)
	p.logger.Debug().
		Int("healthy", summary.Healthy).
		Int("total", summary.Total).
		Msg("Service status refreshed")

	return results
}

// Watch runs once immediately, then on every tick of the cron schedule until
// ctx is cancelled. onTick, when set, is called after each run. A tick that
// fires while the previous run is still in flight is skipped.
func (p *Poller) Watch(ctx context.Context, schedule string, page render.Page, onTick func([]Result)) error {
	tick := func() {
		results := p.Run(ctx, page)
		if onTick != nil {
			onTick(results)
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, tick); err != nil {
		return fmt.Errorf("invalid health schedule %q: %w", schedule, err)
	}

	tick()

	c.Start()
	p.logger.Info().Str("schedule", schedule).Msg("Watching service health")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// ValidateSchedule reports whether schedule is accepted by Watch
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid health schedule %q: %w", schedule, err)
	}
	return nil
}
