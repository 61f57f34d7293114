package tasks_tools

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
	"github.com/teemow/boxmcp/internal/tasks"
	"github.com/teemow/boxmcp/internal/tools/batch"
	"github.com/teemow/boxmcp/internal/tools/common"
)

type assignmentArgs struct {
	common.QueryArgs `mapstructure:",squash"`
	AssignmentID     string `mapstructure:"assignmentId"`
}

type assignArgs struct {
	TaskID string `mapstructure:"taskId"`
	UserID string `mapstructure:"userId"`
	Login  string `mapstructure:"login"`
}

type updateAssignmentArgs struct {
	AssignmentID    string `mapstructure:"assignmentId"`
	Message         string `mapstructure:"message"`
	ResolutionState string `mapstructure:"resolutionState"`
}

func registerAssignmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listAssignmentsTool := mcp.NewTool("box_tasks_list_assignments",
		mcp.WithDescription("List the assignments of a Box task"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("fields", mcp.Description(fieldsDescription)),
	)
	s.AddTool(listAssignmentsTool, common.InstrumentedToolHandlerWithService("box_tasks_list_assignments",
		instrumentation.ServiceTasks, instrumentation.OperationList, sc, handleListAssignments(sc)))

	getAssignmentTool := mcp.NewTool("box_tasks_get_assignment",
		mcp.WithDescription("Get a Box task assignment"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("assignmentId",
			mcp.Required(),
			mcp.Description("The ID of the task assignment"),
		),
		mcp.WithString("fields", mcp.Description(fieldsDescription)),
	)
	s.AddTool(getAssignmentTool, common.InstrumentedToolHandlerWithService("box_tasks_get_assignment",
		instrumentation.ServiceTasks, instrumentation.OperationGet, sc, handleGetAssignment(sc)))

	if readOnly {
		return nil
	}

	assignTool := mcp.NewTool("box_tasks_assign",
		mcp.WithDescription("Assign a Box task to a user. Give exactly one of userId, login or userIds."),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("userId", mcp.Description("ID of the user to assign")),
		mcp.WithString("login", mcp.Description("Login (email) of the user to assign")),
		mcp.WithArray("userIds",
			mcp.Description("IDs of several users to assign; each gets its own assignment"),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(assignTool, common.InstrumentedToolHandlerWithService("box_tasks_assign",
		instrumentation.ServiceTasks, instrumentation.OperationAssign, sc, handleAssign(sc)))

	updateAssignmentTool := mcp.NewTool("box_tasks_update_assignment",
		mcp.WithDescription("Update a Box task assignment's message or resolution state"),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("assignmentId",
			mcp.Required(),
			mcp.Description("The ID of the task assignment"),
		),
		mcp.WithString("message", mcp.Description("Message from the assignee")),
		mcp.WithString("resolutionState",
			mcp.Description("Resolution state"),
			mcp.Enum(tasks.ResolutionStates...),
		),
	)
	s.AddTool(updateAssignmentTool, common.InstrumentedToolHandlerWithService("box_tasks_update_assignment",
		instrumentation.ServiceTasks, instrumentation.OperationUpdate, sc, handleUpdateAssignment(sc)))

	deleteAssignmentTool := mcp.NewTool("box_tasks_delete_assignment",
		mcp.WithDescription("Delete a Box task assignment"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("assignmentId",
			mcp.Required(),
			mcp.Description("The ID of the task assignment to delete"),
		),
	)
	s.AddTool(deleteAssignmentTool, common.InstrumentedToolHandlerWithService("box_tasks_delete_assignment",
		instrumentation.ServiceTasks, instrumentation.OperationDelete, sc, handleDeleteAssignment(sc)))

	return nil
}

func handleListAssignments(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in taskArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.TaskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		return common.CallBox(ctx, "list task assignments", "", func(cb box.Callback) {
			m.GetAssignments(ctx, in.TaskID, in.Query(), cb)
		})
	}
}

func handleGetAssignment(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in assignmentArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.AssignmentID == "" {
			return mcp.NewToolResultError("assignmentId is required"), nil
		}

		return common.CallBox(ctx, "get task assignment", "", func(cb box.Callback) {
			m.GetAssignment(ctx, in.AssignmentID, in.Query(), cb)
		})
	}
}

func handleAssign(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		var in assignArgs
		m, errResult := taskManager(ctx, sc, args, &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.TaskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		given := 0
		for _, set := range []bool{in.UserID != "", in.Login != "", args["userIds"] != nil} {
			if set {
				given++
			}
		}
		if given != 1 {
			return mcp.NewToolResultError("exactly one of userId, login or userIds is required"), nil
		}

		switch {
		case in.UserID != "":
			return common.CallBox(ctx, "assign task", "", func(cb box.Callback) {
				m.CreateAssignmentWithUserID(ctx, in.TaskID, in.UserID, cb)
			})
		case in.Login != "":
			return common.CallBox(ctx, "assign task", "", func(cb box.Callback) {
				m.CreateAssignmentWithUserLogin(ctx, in.TaskID, in.Login, cb)
			})
		}

		userIDs, err := batch.ParseStringOrArray(args["userIds"], "userIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results := AssignUsers(ctx, m, in.TaskID, userIDs)
		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

// AssignUsers creates one assignment per user ID and reports each outcome.
func AssignUsers(ctx context.Context, m *tasks.Manager, taskID string, userIDs []string) []batch.Result {
	return batch.ProcessBatch(ctx, userIDs, func(ctx context.Context, userID string) (string, error) {
		body, err := box.Await(ctx, func(cb box.Callback) {
			m.CreateAssignmentWithUserID(ctx, taskID, userID, cb)
		})
		if err != nil {
			return "", err
		}
		assignment, err := box.Decode[tasks.Assignment](body)
		if err != nil {
			return "", err
		}
		if assignment == nil || assignment.ID == "" {
			return "assigned", nil
		}
		return fmt.Sprintf("assignment %s created", assignment.ID), nil
	})
}

func handleUpdateAssignment(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in updateAssignmentArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.AssignmentID == "" {
			return mcp.NewToolResultError("assignmentId is required"), nil
		}
		if in.Message == "" && in.ResolutionState == "" {
			return mcp.NewToolResultError("at least one of message or resolutionState is required"), nil
		}
		if err := validation.Validate(in.ResolutionState, validation.In(resolutionStates()...)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid resolutionState %q: %v", in.ResolutionState, err)), nil
		}

		opts := &tasks.UpdateAssignmentOptions{Message: in.Message, ResolutionState: in.ResolutionState}
		return common.CallBox(ctx, "update task assignment", "", func(cb box.Callback) {
			m.UpdateAssignment(ctx, in.AssignmentID, opts, cb)
		})
	}
}

func handleDeleteAssignment(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in assignmentArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.AssignmentID == "" {
			return mcp.NewToolResultError("assignmentId is required"), nil
		}

		return common.CallBox(ctx, "delete task assignment", fmt.Sprintf("Task assignment %s deleted successfully", in.AssignmentID), func(cb box.Callback) {
			m.DeleteAssignment(ctx, in.AssignmentID, cb)
		})
	}
}

func resolutionStates() []interface{} {
	states := make([]interface{}, len(tasks.ResolutionStates))
	for i, s := range tasks.ResolutionStates {
		states[i] = s
	}
	return states
}
