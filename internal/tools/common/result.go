package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/boxmcp/internal/box"
)

// CallBox issues a manager call, waits for its callback and turns the
// outcome into a tool result. Box errors are reported as tool errors, not
// as protocol errors. emptyMessage is returned when Box answers without a
// body, as it does for deletions.
func CallBox(ctx context.Context, action, emptyMessage string, issue func(cb box.Callback)) (*mcp.CallToolResult, error) {
	body, err := box.Await(ctx, issue)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err)), nil
	}
	return JSONResult(body, emptyMessage), nil
}

// JSONResult pretty prints a response body as a text result.
func JSONResult(body json.RawMessage, emptyMessage string) *mcp.CallToolResult {
	if len(body) == 0 {
		return mcp.NewToolResultText(emptyMessage)
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return mcp.NewToolResultText(string(body))
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}
