package tasks

import (
	"time"

	"github.com/teemow/boxmcp/internal/box"
)

// ActionReview is the only task action the API accepts for new tasks.
const ActionReview = "review"

// Resolution states of a task assignment.
const (
	ResolutionIncomplete = "incomplete"
	ResolutionCompleted  = "completed"
	ResolutionApproved   = "approved"
	ResolutionRejected   = "rejected"
)

// ResolutionStates lists every valid resolution state.
var ResolutionStates = []string{
	ResolutionIncomplete,
	ResolutionCompleted,
	ResolutionApproved,
	ResolutionRejected,
}

// CreateOptions holds the optional fields of a new task.
// Empty fields are left out of the request.
type CreateOptions struct {
	Message string
	DueAt   string // RFC 3339
}

// UpdateOptions holds the fields to change on an existing task.
type UpdateOptions struct {
	Message string
	DueAt   string // RFC 3339
	Action  string
}

// UpdateAssignmentOptions holds the fields to change on an assignment.
type UpdateAssignmentOptions struct {
	Message         string
	ResolutionState string
}

// Assignee identifies the user a task is assigned to. Exactly one of ID and
// Login is expected; the Manager sends whichever are set.
type Assignee struct {
	ID    string `json:"id,omitempty"`
	Login string `json:"login,omitempty"`
}

// Task represents a Box task
type Task struct {
	Type        string                `json:"type"`
	ID          string                `json:"id"`
	Item        *box.MiniItem         `json:"item,omitempty"`
	DueAt       time.Time             `json:"due_at"`
	Action      string                `json:"action"`
	Message     string                `json:"message"`
	IsCompleted bool                  `json:"is_completed"`
	CreatedBy   *box.UserRef          `json:"created_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	Assignments *box.Page[Assignment] `json:"task_assignment_collection,omitempty"`
}

// Assignment represents a task assigned to a single user
type Assignment struct {
	Type            string        `json:"type"`
	ID              string        `json:"id"`
	Item            *box.MiniItem `json:"item,omitempty"`
	AssignedTo      *box.UserRef  `json:"assigned_to,omitempty"`
	AssignedBy      *box.UserRef  `json:"assigned_by,omitempty"`
	Message         string        `json:"message"`
	ResolutionState string        `json:"resolution_state"`
	AssignedAt      time.Time     `json:"assigned_at"`
	RemindedAt      time.Time     `json:"reminded_at"`
	CompletedAt     time.Time     `json:"completed_at"`
}

// Request bodies. Optional fields use omitempty so that absent options never
// reach the wire.

type createTaskBody struct {
	Item    box.ItemRef `json:"item"`
	Action  string      `json:"action"`
	Message string      `json:"message,omitempty"`
	DueAt   string      `json:"due_at,omitempty"`
}

type updateTaskBody struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	DueAt   string `json:"due_at,omitempty"`
}

type createAssignmentBody struct {
	Item     box.ItemRef `json:"item"`
	AssignTo Assignee    `json:"assign_to"`
}

type updateAssignmentBody struct {
	Message         string `json:"message,omitempty"`
	ResolutionState string `json:"resolution_state,omitempty"`
}
