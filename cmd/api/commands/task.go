package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retailops/loadboard/internal/dashboard"
	"github.com/retailops/loadboard/internal/domain/entities"
)

// NewTaskCommand creates the task management command
func NewTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
		Long:  "Create, inspect, edit, complete and delete tasks through the API",
	}

	taskCmd.AddCommand(newTaskAddCommand())
	taskCmd.AddCommand(newTaskShowCommand())
	taskCmd.AddCommand(newTaskEditCommand())
	taskCmd.AddCommand(newTaskStatusCommand("complete", "Mark tasks complete", true))
	taskCmd.AddCommand(newTaskStatusCommand("pending", "Mark tasks pending", false))
	taskCmd.AddCommand(newTaskDeleteCommand())

	return taskCmd
}

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().String("retailer", "", "Retailer name")
	cmd.Flags().String("day", "", "Schedule: "+strings.Join(entities.ScheduleDays, ", "))
	cmd.Flags().Int("file-count", dashboard.DefaultFileCount, "Expected number of files")
	cmd.Flags().Int("xlsx", dashboard.DefaultFormats.XLSX, "Expected xlsx files")
	cmd.Flags().Int("csv", dashboard.DefaultFormats.CSV, "Expected csv files")
	cmd.Flags().Int("txt", dashboard.DefaultFormats.TXT, "Expected txt files")
	cmd.Flags().Int("mail", dashboard.DefaultFormats.Mail, "Expected mailed files")
	cmd.Flags().String("load-type", string(dashboard.DefaultLoadType), "Direct load or Indirect load")
	cmd.Flags().String("link", "", "Source system URL")
	cmd.Flags().String("username", "", "Source system username")
	cmd.Flags().String("password", "", "Source system password")
	cmd.Flags().StringArray("file", nil, "File mapping as download=required, repeatable")
}

// applyTaskFlags copies the flags the user set onto form
func applyTaskFlags(cmd *cobra.Command, form *dashboard.TaskForm) error {
	flags := cmd.Flags()
	if flags.Changed("retailer") {
		form.Retailer, _ = flags.GetString("retailer")
	}
	if flags.Changed("day") {
		form.Day, _ = flags.GetString("day")
	}
	if flags.Changed("file-count") {
		form.FileCount, _ = flags.GetInt("file-count")
	}
	if flags.Changed("xlsx") {
		form.Formats.XLSX, _ = flags.GetInt("xlsx")
	}
	if flags.Changed("csv") {
		form.Formats.CSV, _ = flags.GetInt("csv")
	}
	if flags.Changed("txt") {
		form.Formats.TXT, _ = flags.GetInt("txt")
	}
	if flags.Changed("mail") {
		form.Formats.Mail, _ = flags.GetInt("mail")
	}
	if flags.Changed("load-type") {
		lt, _ := flags.GetString("load-type")
		form.LoadType = entities.LoadType(lt)
	}
	if flags.Changed("link") {
		form.Link, _ = flags.GetString("link")
	}
	if flags.Changed("username") {
		form.Username, _ = flags.GetString("username")
	}
	if flags.Changed("password") {
		form.Password, _ = flags.GetString("password")
	}
	if flags.Changed("file") {
		mappings, _ := flags.GetStringArray("file")
		form.Files = []entities.TaskFile{}
		for _, m := range mappings {
			download, required, ok := strings.Cut(m, "=")
			if !ok {
				return fmt.Errorf("file mapping %q must look like download=required", m)
			}
			form.AddFile(strings.TrimSpace(download), strings.TrimSpace(required))
		}
	}
	return nil
}

func newTaskAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Run: func(cmd *cobra.Command, args []string) {
			env := newClientEnv()
			defer env.logger.Close()

			form := dashboard.NewTaskForm()
			if err := applyTaskFlags(cmd, form); err != nil {
				log.Fatal(err)
			}

			task, err := env.board.Create(context.Background(), form)
			if err != nil {
				log.Fatalf("Failed to create task: %v", err)
			}

			fmt.Printf("Task created successfully:\n")
			fmt.Printf("  ID: %s\n", task.ID)
			fmt.Printf("  Retailer: %s\n", task.Retailer)
			fmt.Printf("  Schedule: %s\n", task.Day)
		},
	}
	addTaskFlags(cmd)
	return cmd
}

func newTaskShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := newClientEnv()
			defer env.logger.Close()

			task, err := env.board.Detail(context.Background(), args[0])
			if err != nil {
				log.Fatalf("Failed to load task: %v", err)
			}
			if err := dashboard.RenderDetail(os.Stdout, *task, renderOptions(cmd)); err != nil {
				log.Fatalf("Failed to render task: %v", err)
			}
		},
	}
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func newTaskEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long:  "Only the flags given are changed. Nested values such as formats and files are replaced whole.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := newClientEnv()
			defer env.logger.Close()
			ctx := context.Background()

			task, err := env.board.Detail(ctx, args[0])
			if err != nil {
				log.Fatalf("Failed to load task: %v", err)
			}

			form := dashboard.NewEditForm(*task)
			if err := applyTaskFlags(cmd, &form.TaskForm); err != nil {
				log.Fatal(err)
			}
			if cmd.Flags().Changed("completed") {
				form.Completed, _ = cmd.Flags().GetBool("completed")
			}

			if err := env.board.Save(ctx, form); err != nil {
				log.Fatalf("Failed to update task: %v", err)
			}
			fmt.Printf("Task %s updated\n", task.ID)
		},
	}
	addTaskFlags(cmd)
	cmd.Flags().Bool("completed", false, "Completion flag")
	return cmd
}

func newTaskStatusCommand(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := newClientEnv()
			defer env.logger.Close()
			ctx := context.Background()

			if len(args) == 1 {
				if err := env.board.SetCompleted(ctx, args[0], completed); err != nil {
					log.Fatalf("Failed to update task: %v", err)
				}
				fmt.Printf("Task %s marked %s\n", args[0], statusWord(completed))
				return
			}

			env.board.Select(args...)
			res := env.board.BulkSetCompleted(ctx, completed)
			reportBulk(res, "marked "+statusWord(completed))
		},
	}
}

func newTaskDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete tasks",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			env := newClientEnv()
			defer env.logger.Close()
			ctx := context.Background()

			if len(args) == 1 {
				if err := env.board.Delete(ctx, args[0]); err != nil {
					log.Fatalf("Failed to delete task: %v", err)
				}
				fmt.Printf("Task %s deleted\n", args[0])
				return
			}

			env.board.Select(args...)
			reportBulk(env.board.BulkDelete(ctx), "deleted")
		},
	}
}

func reportBulk(res dashboard.BulkResult, verb string) {
	for _, id := range res.Succeeded {
		fmt.Printf("Task %s %s\n", id, verb)
	}
	if err := res.Err(); err != nil {
		log.Fatalf("Some tasks failed: %v", err)
	}
}

func statusWord(completed bool) string {
	if completed {
		return entities.StatusCompleted
	}
	return entities.StatusPending
}
