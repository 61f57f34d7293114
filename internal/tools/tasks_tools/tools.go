package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
	"github.com/teemow/boxmcp/internal/tasks"
	"github.com/teemow/boxmcp/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Selects a Box account from the configuration file."

const fieldsDescription = "Comma separated list of fields to return, e.g. 'message,dueAt'. Names are converted to snake_case."

type taskArgs struct {
	common.QueryArgs `mapstructure:",squash"`
	TaskID           string `mapstructure:"taskId"`
}

type createTaskArgs struct {
	FileID  string `mapstructure:"fileId"`
	Message string `mapstructure:"message"`
	DueAt   string `mapstructure:"dueAt"`
}

type updateTaskArgs struct {
	TaskID  string `mapstructure:"taskId"`
	Message string `mapstructure:"message"`
	DueAt   string `mapstructure:"dueAt"`
	Action  string `mapstructure:"action"`
}

// RegisterTasksTools registers all Box task tools with the MCP server
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerTaskTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}
	if err := registerAssignmentTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register assignment tools: %w", err)
	}
	return nil
}

func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getTaskTool := mcp.NewTool("box_tasks_get",
		mcp.WithDescription("Get a Box task, including its assignments"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("fields", mcp.Description(fieldsDescription)),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithService("box_tasks_get",
		instrumentation.ServiceTasks, instrumentation.OperationGet, sc, handleGetTask(sc)))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("box_tasks_create",
		mcp.WithDescription("Create a review task on a Box file"),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file to review"),
		),
		mcp.WithString("message", mcp.Description("Message shown to the assignees")),
		mcp.WithString("dueAt", mcp.Description("Due date, e.g. '2024-05-01T17:00:00Z' or 'May 1, 2024 5pm'")),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithService("box_tasks_create",
		instrumentation.ServiceTasks, instrumentation.OperationCreate, sc, handleCreateTask(sc)))

	updateTaskTool := mcp.NewTool("box_tasks_update",
		mcp.WithDescription("Update the message, due date or action of a Box task"),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task"),
		),
		mcp.WithString("message", mcp.Description("New message")),
		mcp.WithString("dueAt", mcp.Description("New due date")),
		mcp.WithString("action",
			mcp.Description("Task action"),
			mcp.Enum(tasks.ActionReview),
		),
	)
	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithService("box_tasks_update",
		instrumentation.ServiceTasks, instrumentation.OperationUpdate, sc, handleUpdateTask(sc)))

	deleteTaskTool := mcp.NewTool("box_tasks_delete",
		mcp.WithDescription("Delete a Box task"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithService("box_tasks_delete",
		instrumentation.ServiceTasks, instrumentation.OperationDelete, sc, handleDeleteTask(sc)))

	return nil
}

// taskManager decodes the arguments into in and resolves the account's manager.
func taskManager(ctx context.Context, sc *server.ServerContext, args map[string]interface{}, in interface{}) (*tasks.Manager, *mcp.CallToolResult) {
	if err := common.DecodeArgs(args, in); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	m, err := sc.TasksForAccount(common.GetAccountFromArgs(ctx, args))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return m, nil
}

func handleGetTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in taskArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.TaskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		return common.CallBox(ctx, "get task", "", func(cb box.Callback) {
			m.Get(ctx, in.TaskID, in.Query(), cb)
		})
	}
}

func handleCreateTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in createTaskArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.FileID == "" {
			return mcp.NewToolResultError("fileId is required"), nil
		}
		dueAt, err := common.NormalizeDueAt(in.DueAt)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := &tasks.CreateOptions{Message: in.Message, DueAt: dueAt}
		return common.CallBox(ctx, "create task", "", func(cb box.Callback) {
			m.Create(ctx, in.FileID, opts, cb)
		})
	}
}

func handleUpdateTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in updateTaskArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.TaskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}
		dueAt, err := common.NormalizeDueAt(in.DueAt)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if in.Message == "" && dueAt == "" && in.Action == "" {
			return mcp.NewToolResultError("at least one of message, dueAt or action is required"), nil
		}

		opts := &tasks.UpdateOptions{Message: in.Message, DueAt: dueAt, Action: in.Action}
		return common.CallBox(ctx, "update task", "", func(cb box.Callback) {
			m.Update(ctx, in.TaskID, opts, cb)
		})
	}
}

func handleDeleteTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in taskArgs
		m, errResult := taskManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.TaskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		return common.CallBox(ctx, "delete task", fmt.Sprintf("Task %s deleted successfully", in.TaskID), func(cb box.Callback) {
			m.Delete(ctx, in.TaskID, cb)
		})
	}
}
