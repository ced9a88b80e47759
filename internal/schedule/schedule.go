// Package schedule runs periodic exports and low-stock checks on cron
// expressions.
package schedule

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/shamba/internal/alert"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/service"
)

// parser uses standard 5-field cron expressions, matching config validation.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Opts configures a Scheduler.
type Opts struct {
	Service   *service.Service
	ExportDir string
	Schedules []config.ScheduleConfig
	AlertCron string
	Notifiers []alert.Notifier
}

// Scheduler owns the cron runner and its registered jobs.
type Scheduler struct {
	cron *cron.Cron
	opts Opts
	jobs int
}

// New registers one job per schedule, plus the low-stock check when
// AlertCron is set and at least one notifier is configured.
func New(opts Opts) (*Scheduler, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("schedule: service is required")
	}
	s := &Scheduler{
		cron: cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		opts: opts,
	}

	for i, sc := range opts.Schedules {
		format, err := export.ParseFormat(sc.Format)
		if err != nil {
			return nil, fmt.Errorf("schedule: schedules[%d]: %w", i, err)
		}
		data := sc.Data
		if _, err := s.cron.AddFunc(sc.Cron, func() { s.RunExport(data, format) }); err != nil {
			return nil, fmt.Errorf("schedule: schedules[%d] cron %q: %w", i, sc.Cron, err)
		}
		s.jobs++
	}

	if opts.AlertCron != "" && len(opts.Notifiers) > 0 {
		if _, err := s.cron.AddFunc(opts.AlertCron, func() { s.RunLowStock(context.Background()) }); err != nil {
			return nil, fmt.Errorf("schedule: alerts cron %q: %w", opts.AlertCron, err)
		}
		s.jobs++
	}
	return s, nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int { return s.jobs }

// Run starts the jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// RunExport writes one export file. Failures are logged.
func (s *Scheduler) RunExport(data string, format export.Format) (string, error) {
	path, err := s.opts.Service.ExportToFile(data, format, s.opts.ExportDir)
	if err != nil {
		log.Printf("schedule: export %s: %v", data, err)
		return "", err
	}
	log.Printf("schedule: exported %s to %s", data, path)
	return path, nil
}

// RunLowStock checks stock levels and notifies. Failures are logged.
func (s *Scheduler) RunLowStock(ctx context.Context) (int, error) {
	n, err := alert.CheckLowStock(ctx, s.opts.Service, s.opts.Notifiers)
	if err != nil {
		log.Printf("schedule: low stock: %v", err)
	}
	return n, err
}
