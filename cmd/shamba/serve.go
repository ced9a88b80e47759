package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/alert"
	"github.com/zulandar/shamba/internal/api"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/schedule"
	"github.com/zulandar/shamba/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled jobs",
		Long:  "Serves the HTTP API and runs the configured export schedules and low-stock alerts until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(cfg *config.Config, svc *service.Service) error {
				if port > 0 {
					cfg.Server.Port = port
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return runServe(ctx, cmd, cfg, svc)
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVar(&port, "port", 0, "listen port; defaults to server.port")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, svc *service.Service) error {
	out := cmd.OutOrStdout()

	notifiers, err := alert.FromConfig(cfg.Alerts.SlackWebhookURL, cfg.Alerts.DiscordWebhookURL)
	if err != nil {
		return err
	}
	sched, err := schedule.New(schedule.Opts{
		Service:   svc,
		ExportDir: cfg.Export.Dir,
		Schedules: cfg.Schedules,
		AlertCron: cfg.Alerts.Cron,
		Notifiers: notifiers,
	})
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Scheduled %d job(s), %d notifier(s)\n", sched.Jobs(), len(notifiers))

	// The scheduler also stops when the server fails to start.
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	return api.Start(ctx, api.StartOpts{
		Service:       svc,
		Port:          cfg.Server.Port,
		AllowOrigins:  cfg.Server.AllowOrigins,
		DefaultFormat: format,
		Out:           out,
	})
}
