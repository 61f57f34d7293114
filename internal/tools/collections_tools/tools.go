package collections_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/collections"
	"github.com/teemow/boxmcp/internal/instrumentation"
	"github.com/teemow/boxmcp/internal/server"
	"github.com/teemow/boxmcp/internal/tools/batch"
	"github.com/teemow/boxmcp/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Selects a Box account from the configuration file."

type collectionArgs struct {
	common.QueryArgs `mapstructure:",squash"`
	CollectionID     string `mapstructure:"collectionId"`
}

type updateFolderArgs struct {
	FolderID string `mapstructure:"folderId"`
}

// RegisterCollectionsTools registers the Box collection tools with the MCP server
func RegisterCollectionsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("box_collections_list",
		mcp.WithDescription("List the collections of the user, such as Favorites"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("fields", mcp.Description("Comma separated list of fields to return")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of collections to return")),
		mcp.WithNumber("offset", mcp.Description("Offset of the first collection to return")),
	)
	s.AddTool(listTool, common.InstrumentedToolHandlerWithService("box_collections_list",
		instrumentation.ServiceCollections, instrumentation.OperationList, sc, handleList(sc)))

	getTool := mcp.NewTool("box_collections_get",
		mcp.WithDescription("Get a Box collection"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("collectionId",
			mcp.Required(),
			mcp.Description("The ID of the collection"),
		),
		mcp.WithString("fields", mcp.Description("Comma separated list of fields to return")),
	)
	s.AddTool(getTool, common.InstrumentedToolHandlerWithService("box_collections_get",
		instrumentation.ServiceCollections, instrumentation.OperationGet, sc, handleGet(sc)))

	listItemsTool := mcp.NewTool("box_collections_list_items",
		mcp.WithDescription("List the files, folders and web links in a Box collection"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("collectionId",
			mcp.Required(),
			mcp.Description("The ID of the collection"),
		),
		mcp.WithString("fields", mcp.Description("Comma separated list of fields to return")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of items to return")),
		mcp.WithNumber("offset", mcp.Description("Offset of the first item to return")),
	)
	s.AddTool(listItemsTool, common.InstrumentedToolHandlerWithService("box_collections_list_items",
		instrumentation.ServiceCollections, instrumentation.OperationList, sc, handleListItems(sc)))

	if readOnly {
		return nil
	}

	updateFolderTool := mcp.NewTool("box_collections_update_folder",
		mcp.WithDescription("Replace the set of collections a folder belongs to. An empty list removes the folder from all collections."),
		mcp.WithString("account", mcp.Description(accountDescription)),
		mcp.WithString("folderId",
			mcp.Required(),
			mcp.Description("The ID of the folder"),
		),
		mcp.WithArray("collectionIds",
			mcp.Required(),
			mcp.Description("Collection IDs the folder should belong to. A single ID or comma separated string is also accepted."),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(updateFolderTool, common.InstrumentedToolHandlerWithService("box_collections_update_folder",
		instrumentation.ServiceCollections, instrumentation.OperationUpdate, sc, handleUpdateFolder(sc)))

	return nil
}

func collectionManager(ctx context.Context, sc *server.ServerContext, args map[string]interface{}, in interface{}) (*collections.Manager, *mcp.CallToolResult) {
	if err := common.DecodeArgs(args, in); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	m, err := sc.CollectionsForAccount(common.GetAccountFromArgs(ctx, args))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return m, nil
}

func handleList(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in common.QueryArgs
		m, errResult := collectionManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}

		return common.CallBox(ctx, "list collections", "", func(cb box.Callback) {
			m.GetAll(ctx, in.Query(), cb)
		})
	}
}

func handleGet(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in collectionArgs
		m, errResult := collectionManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.CollectionID == "" {
			return mcp.NewToolResultError("collectionId is required"), nil
		}

		return common.CallBox(ctx, "get collection", "", func(cb box.Callback) {
			m.Get(ctx, in.CollectionID, in.Query(), cb)
		})
	}
}

func handleListItems(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in collectionArgs
		m, errResult := collectionManager(ctx, sc, request.GetArguments(), &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.CollectionID == "" {
			return mcp.NewToolResultError("collectionId is required"), nil
		}

		return common.CallBox(ctx, "list collection items", "", func(cb box.Callback) {
			m.GetItems(ctx, in.CollectionID, in.Query(), cb)
		})
	}
}

func handleUpdateFolder(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		var in updateFolderArgs
		m, errResult := collectionManager(ctx, sc, args, &in)
		if errResult != nil {
			return errResult, nil
		}
		if in.FolderID == "" {
			return mcp.NewToolResultError("folderId is required"), nil
		}
		collectionIDs, err := batch.ParseList(args["collectionIds"], "collectionIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return common.CallBox(ctx, "update folder collections", fmt.Sprintf("Folder %s updated", in.FolderID), func(cb box.Callback) {
			m.UpdateFolderCollections(ctx, in.FolderID, collectionIDs, cb)
		})
	}
}
