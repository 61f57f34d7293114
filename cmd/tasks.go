package cmd

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/tasks"
	"github.com/teemow/boxmcp/internal/tools/batch"
	"github.com/teemow/boxmcp/internal/tools/common"
	"github.com/teemow/boxmcp/internal/tools/tasks_tools"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage Box tasks and task assignments",
	}

	cmd.AddCommand(newTasksCreateCmd())
	cmd.AddCommand(newTasksGetCmd())
	cmd.AddCommand(newTasksUpdateCmd())
	cmd.AddCommand(newTasksDeleteCmd())
	cmd.AddCommand(newTasksAssignmentsCmd())
	cmd.AddCommand(newTasksAssignCmd())
	cmd.AddCommand(newTasksGetAssignmentCmd())
	cmd.AddCommand(newTasksUpdateAssignmentCmd())
	cmd.AddCommand(newTasksDeleteAssignmentCmd())

	return cmd
}

func newTasksCreateCmd() *cobra.Command {
	var message, dueAt string

	cmd := &cobra.Command{
		Use:   "create <file-id>",
		Short: "Create a review task on a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := common.NormalizeDueAt(dueAt)
			if err != nil {
				return err
			}
			opts := &tasks.CreateOptions{Message: message, DueAt: due}
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).Create(ctx, args[0], opts, cb)
			})
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Message shown to assignees")
	cmd.Flags().StringVar(&dueAt, "due-at", "", "Due date, e.g. 2026-11-01 or 2026-11-01T17:00:00Z")

	return cmd
}

func newTasksGetCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).Get(ctx, args[0], q.query(), cb)
			})
		},
	}
	q.register(cmd, false)

	return cmd
}

func newTasksUpdateCmd() *cobra.Command {
	var message, dueAt, action string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change the message, due date or action of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" && dueAt == "" && action == "" {
				return fmt.Errorf("at least one of --message, --due-at or --action is required")
			}
			if err := validation.Validate(action, validation.In(tasks.ActionReview)); err != nil {
				return fmt.Errorf("invalid --action: %w", err)
			}
			due, err := common.NormalizeDueAt(dueAt)
			if err != nil {
				return err
			}
			opts := &tasks.UpdateOptions{Message: message, DueAt: due, Action: action}
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).Update(ctx, args[0], opts, cb)
			})
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "New message")
	cmd.Flags().StringVar(&dueAt, "due-at", "", "New due date")
	cmd.Flags().StringVar(&action, "action", "", "New action (review)")

	return cmd
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, fmt.Sprintf("Task %s deleted", args[0]), func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).Delete(ctx, args[0], cb)
			})
		},
	}
}

func newTasksAssignmentsCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "assignments <task-id>",
		Short: "List the assignments of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).GetAssignments(ctx, args[0], q.query(), cb)
			})
		},
	}
	q.register(cmd, false)

	return cmd
}

func newTasksAssignCmd() *cobra.Command {
	var (
		userIDs []string
		login   string
	)

	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task to one or more users",
		Long: `Assign a task either by user ID or by login.

Several --user-id values create one assignment per user; every
assignment is attempted and failures are reported together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]

			if login != "" {
				return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
					tasks.NewManager(client).CreateAssignmentWithUserLogin(ctx, taskID, login, cb)
				})
			}
			ids, err := batch.ParseStringOrArray(userIDs, "--user-id")
			if err != nil {
				return err
			}
			if len(ids) == 1 {
				return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
					tasks.NewManager(client).CreateAssignmentWithUserID(ctx, taskID, ids[0], cb)
				})
			}
			return assignMany(cmd, taskID, ids)
		},
	}

	cmd.Flags().StringSliceVar(&userIDs, "user-id", nil, "User ID to assign; repeat or comma separate for several users")
	cmd.Flags().StringVar(&login, "login", "", "Login (email) of the user to assign")
	cmd.MarkFlagsOneRequired("user-id", "login")
	cmd.MarkFlagsMutuallyExclusive("user-id", "login")

	return cmd
}

func assignMany(cmd *cobra.Command, taskID string, userIDs []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newRequester(ctx)
	if err != nil {
		return err
	}

	results := tasks_tools.AssignUsers(ctx, tasks.NewManager(client), taskID, userIDs)
	fmt.Fprintln(cmd.OutOrStdout(), batch.FormatResults(results))
	return batch.Err(results)
}

func newTasksGetAssignmentCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "get-assignment <assignment-id>",
		Short: "Show a task assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).GetAssignment(ctx, args[0], q.query(), cb)
			})
		},
	}
	q.register(cmd, false)

	return cmd
}

func newTasksUpdateAssignmentCmd() *cobra.Command {
	var message, state string

	cmd := &cobra.Command{
		Use:   "update-assignment <assignment-id>",
		Short: "Resolve a task assignment or change its message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" && state == "" {
				return fmt.Errorf("at least one of --message or --resolution-state is required")
			}
			if err := validation.Validate(state, validation.In(resolutionStates()...)); err != nil {
				return fmt.Errorf("invalid --resolution-state: %w", err)
			}
			opts := &tasks.UpdateAssignmentOptions{Message: message, ResolutionState: state}
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).UpdateAssignment(ctx, args[0], opts, cb)
			})
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Message from the assignee")
	cmd.Flags().StringVar(&state, "resolution-state", "", "One of incomplete, completed, approved or rejected")

	return cmd
}

func newTasksDeleteAssignmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-assignment <assignment-id>",
		Short: "Delete a task assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, fmt.Sprintf("Assignment %s deleted", args[0]), func(ctx context.Context, client box.Requester, cb box.Callback) {
				tasks.NewManager(client).DeleteAssignment(ctx, args[0], cb)
			})
		},
	}
}

func resolutionStates() []interface{} {
	states := make([]interface{}, len(tasks.ResolutionStates))
	for i, s := range tasks.ResolutionStates {
		states[i] = s
	}
	return states
}
