package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/service"
	"github.com/zulandar/shamba/internal/task"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksAddCmd())
	cmd.AddCommand(newTaskStatusCmd("complete", "Mark a task completed", func(svc *service.Service, id uint) (*models.Task, error) {
		return svc.CompleteTask(id)
	}))
	cmd.AddCommand(newTaskStatusCmd("start", "Move a task to in_progress", func(svc *service.Service, id uint) (*models.Task, error) {
		return svc.StartTask(id)
	}))
	cmd.AddCommand(newTaskStatusCmd("cancel", "Cancel a task", func(svc *service.Service, id uint) (*models.Task, error) {
		return svc.CancelTask(id)
	}))
	cmd.AddCommand(newTasksAssignCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var (
		configPath string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				status = s
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				tasks, err := svc.ListTasks(status)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), export.Text(taskSummary(tasks)))
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&status, "status", "", "filter by status ("+strings.Join(task.Statuses, ", ")+")")
	return cmd
}

// taskSummary keeps the listing narrow; export shows every column.
func taskSummary(tasks []models.Task) []export.Record {
	out := make([]export.Record, len(tasks))
	for i, t := range tasks {
		out[i] = export.R(
			"id", t.ID,
			"title", t.Title,
			"status", t.Status,
			"priority", t.Priority,
			"due_date", dateOnly(t.DueDate),
		)
	}
	return out
}

func dateOnly(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func newTasksAddCmd() *cobra.Command {
	var (
		configPath  string
		description string
		due         string
		priority    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				id, err := svc.AddTask(service.AddTaskInput{
					Title:       args[0],
					Description: description,
					DueDate:     due,
					Priority:    priority,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", id, args[0])
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", task.PriorityMedium, "low, medium or high")
	return cmd
}

func newTaskStatusCmd(use, short string, apply func(*service.Service, uint) (*models.Task, error)) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				t, err := apply(svc, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", t.ID, t.Status)
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newTasksAssignCmd() *cobra.Command {
	var (
		configPath string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "assign <task-id> <user-id>",
		Short: "Assign a task to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				a, err := svc.AssignTask(taskID, userID, notes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assignment %d: task %d to user %d\n", a.ID, a.TaskID, a.UserID)
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&notes, "notes", "", "assignment notes")
	return cmd
}
