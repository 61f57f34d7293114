// Package tasks_tools provides MCP tools for Box tasks and task assignments.
//
// # Available Tools
//
// Tasks:
//   - box_tasks_get: Get a task
//   - box_tasks_create: Create a review task on a file (write)
//   - box_tasks_update: Update a task's message, due date or action (write)
//   - box_tasks_delete: Delete a task (write)
//
// Assignments:
//   - box_tasks_list_assignments: List the assignments of a task
//   - box_tasks_get_assignment: Get a task assignment
//   - box_tasks_assign: Assign a task by user ID, login, or to several user IDs (write)
//   - box_tasks_update_assignment: Resolve or comment on an assignment (write)
//   - box_tasks_delete_assignment: Remove an assignment (write)
//
// Write tools are only registered when the server runs with --yolo.
//
// # Multi-Account Support
//
// All tools accept an optional 'account' parameter naming a Box account from
// the configuration file. If not provided, the 'default' account is used.
package tasks_tools
