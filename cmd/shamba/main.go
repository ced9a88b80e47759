package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/apperr"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Command group ids shown as sections in the root help.
const (
	groupRecords = "records"
	groupReports = "reports"
	groupAdmin   = "admin"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shamba",
		Short: "Shamba farm operations",
		Long: `Shamba keeps farm records: inventory stock levels, livestock and the task list.

Record commands change or query the farm database. Report commands write
snapshots to files. Admin commands prepare the database and run the HTTP
API, which also fires scheduled exports and low-stock alerts.

Every command reads shamba.yaml (or --config) and a .env file when present.`,
		SilenceUsage: true,
	}
	cmd.AddGroup(
		&cobra.Group{ID: groupRecords, Title: "Record Commands:"},
		&cobra.Group{ID: groupReports, Title: "Report Commands:"},
		&cobra.Group{ID: groupAdmin, Title: "Admin Commands:"},
	)

	for _, sub := range []struct {
		group string
		cmd   *cobra.Command
	}{
		{groupRecords, newInventoryCmd()},
		{groupRecords, newAnimalsCmd()},
		{groupRecords, newTasksCmd()},
		{groupReports, newExportCmd()},
		{groupAdmin, newDBCmd()},
		{groupAdmin, newServeCmd()},
		{groupAdmin, newVersionCmd()},
	} {
		sub.cmd.GroupID = sub.group
		cmd.AddCommand(sub.cmd)
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shamba %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch apperr.Kind(err) {
	case "":
		return 0
	case apperr.KindValidation:
		return 2
	case apperr.KindNotFound:
		return 3
	case apperr.KindTransition:
		return 4
	default:
		return 1
	}
}

func main() {
	os.Exit(exitCode(newRootCmd().Execute()))
}
