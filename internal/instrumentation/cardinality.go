package instrumentation

import "strings"

// Operation label values for box_api_operations_total.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationAssign = "assign"
)

// APIResource maps a Box API path to its first segment, keeping object IDs
// out of metric labels.
//
//	APIResource("/tasks/1234/assignments") // "tasks"
//	APIResource("")                        // "unknown"
func APIResource(path string) string {
	resource, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	resource, _, _ = strings.Cut(resource, "?")
	if resource == "" {
		return "unknown"
	}
	return resource
}
