package tasks

import (
	"context"

	"github.com/teemow/boxmcp/internal/box"
)

const (
	basePath            = "/tasks"
	assignmentsPath     = "/assignments"
	taskAssignmentsPath = "/task_assignments"
)

// Manager issues task and task assignment requests through a box.Requester.
type Manager struct {
	client box.Requester
}

// NewManager creates a Manager bound to client.
func NewManager(client box.Requester) *Manager {
	return &Manager{client: client}
}

// Create creates a review task on a file.
func (m *Manager) Create(ctx context.Context, fileID string, opts *CreateOptions, cb box.Callback) {
	body := createTaskBody{
		Item:   box.ItemRef{Type: box.ItemTypeFile, ID: fileID},
		Action: ActionReview,
	}
	if opts != nil {
		body.Message = opts.Message
		body.DueAt = opts.DueAt
	}

	m.client.Post(ctx, box.JoinPath(basePath), &box.Params{Body: body}, m.client.DefaultResponseHandler(cb))
}

// Get fetches a task.
func (m *Manager) Get(ctx context.Context, taskID string, query box.Query, cb box.Callback) {
	m.client.Get(ctx, box.JoinPath(basePath, taskID), &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// Update changes the message, due date or action of a task.
func (m *Manager) Update(ctx context.Context, taskID string, opts *UpdateOptions, cb box.Callback) {
	var body updateTaskBody
	if opts != nil {
		body = updateTaskBody{Action: opts.Action, Message: opts.Message, DueAt: opts.DueAt}
	}

	m.client.Put(ctx, box.JoinPath(basePath, taskID), &box.Params{Body: body}, m.client.DefaultResponseHandler(cb))
}

// Delete removes a task and its assignments.
func (m *Manager) Delete(ctx context.Context, taskID string, cb box.Callback) {
	m.client.Delete(ctx, box.JoinPath(basePath, taskID), nil, m.client.DefaultResponseHandler(cb))
}

// GetAssignments lists the assignments of a task. query is sent as given.
func (m *Manager) GetAssignments(ctx context.Context, taskID string, query box.Query, cb box.Callback) {
	path := box.JoinPath(basePath, taskID, assignmentsPath)
	m.client.Get(ctx, path, &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// CreateAssignment assigns a task to the user described by assignee.
// The assignee is sent as given; the API rejects one that names nobody.
func (m *Manager) CreateAssignment(ctx context.Context, taskID string, assignee Assignee, cb box.Callback) {
	body := createAssignmentBody{
		Item:     box.ItemRef{Type: box.ItemTypeTask, ID: taskID},
		AssignTo: assignee,
	}

	m.client.Post(ctx, box.JoinPath(taskAssignmentsPath), &box.Params{Body: body}, m.client.DefaultResponseHandler(cb))
}

// CreateAssignmentWithUserID assigns a task to a user by ID.
func (m *Manager) CreateAssignmentWithUserID(ctx context.Context, taskID, userID string, cb box.Callback) {
	m.CreateAssignment(ctx, taskID, Assignee{ID: userID}, cb)
}

// CreateAssignmentWithUserLogin assigns a task to a user by login (email).
func (m *Manager) CreateAssignmentWithUserLogin(ctx context.Context, taskID, login string, cb box.Callback) {
	m.CreateAssignment(ctx, taskID, Assignee{Login: login}, cb)
}

// GetAssignment fetches a single task assignment.
func (m *Manager) GetAssignment(ctx context.Context, assignmentID string, query box.Query, cb box.Callback) {
	path := box.JoinPath(taskAssignmentsPath, assignmentID)
	m.client.Get(ctx, path, &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// UpdateAssignment changes the message or resolution state of an assignment.
// With nil or empty options an empty object is sent.
func (m *Manager) UpdateAssignment(ctx context.Context, assignmentID string, opts *UpdateAssignmentOptions, cb box.Callback) {
	var body updateAssignmentBody
	if opts != nil {
		body = updateAssignmentBody{Message: opts.Message, ResolutionState: opts.ResolutionState}
	}

	path := box.JoinPath(taskAssignmentsPath, assignmentID)
	m.client.Put(ctx, path, &box.Params{Body: body}, m.client.DefaultResponseHandler(cb))
}

// DeleteAssignment removes a task assignment.
func (m *Manager) DeleteAssignment(ctx context.Context, assignmentID string, cb box.Callback) {
	m.client.Delete(ctx, box.JoinPath(taskAssignmentsPath, assignmentID), nil, m.client.DefaultResponseHandler(cb))
}
