package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/box/boxtest"
)

// executeCommand runs a fresh command tree against fake.
func executeCommand(t *testing.T, fake *boxtest.Requester, args ...string) (string, error) {
	t.Helper()

	orig := newRequester
	newRequester = func(context.Context) (box.Requester, error) { return fake, nil }
	t.Cleanup(func() { newRequester = orig })

	root := newRootCmd()
	root.AddCommand(newTasksCmd(), newCollectionsCmd(), newVersionCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestTasksCommands(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name:       "create",
			args:       []string{"tasks", "create", "1234", "--message", "Please review", "--due-at", "2026-11-01T10:00:00Z"},
			wantMethod: http.MethodPost,
			wantPath:   "/tasks",
			wantBody:   `{"item":{"type":"file","id":"1234"},"action":"review","message":"Please review","due_at":"2026-11-01T10:00:00Z"}`,
		},
		{
			name:       "get",
			args:       []string{"tasks", "get", "5678"},
			wantMethod: http.MethodGet,
			wantPath:   "/tasks/5678",
		},
		{
			name:       "update",
			args:       []string{"tasks", "update", "5678", "--message", "Updated"},
			wantMethod: http.MethodPut,
			wantPath:   "/tasks/5678",
			wantBody:   `{"message":"Updated"}`,
		},
		{
			name:       "assignments",
			args:       []string{"tasks", "assignments", "5678"},
			wantMethod: http.MethodGet,
			wantPath:   "/tasks/5678/assignments",
		},
		{
			name:       "assign by login",
			args:       []string{"tasks", "assign", "5678", "--login", "jane@example.com"},
			wantMethod: http.MethodPost,
			wantPath:   "/task_assignments",
			wantBody:   `{"item":{"type":"task","id":"5678"},"assign_to":{"login":"jane@example.com"}}`,
		},
		{
			name:       "assign by user id",
			args:       []string{"tasks", "assign", "5678", "--user-id", "42"},
			wantMethod: http.MethodPost,
			wantPath:   "/task_assignments",
			wantBody:   `{"item":{"type":"task","id":"5678"},"assign_to":{"id":"42"}}`,
		},
		{
			name:       "get assignment",
			args:       []string{"tasks", "get-assignment", "9012"},
			wantMethod: http.MethodGet,
			wantPath:   "/task_assignments/9012",
		},
		{
			name:       "update assignment",
			args:       []string{"tasks", "update-assignment", "9012", "--resolution-state", "completed"},
			wantMethod: http.MethodPut,
			wantPath:   "/task_assignments/9012",
			wantBody:   `{"resolution_state":"completed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester().RespondWith(http.StatusOK, `{"id":"1"}`)

			out, err := executeCommand(t, fake, tt.args...)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"1"}`, out)

			require.Len(t, fake.Calls(), 1)
			call := fake.LastCall()
			assert.Equal(t, tt.wantMethod, call.Method)
			assert.Equal(t, tt.wantPath, call.Path)
			if tt.wantBody == "" {
				assert.Empty(t, call.BodyJSON())
			} else {
				assert.JSONEq(t, tt.wantBody, call.BodyJSON())
			}
		})
	}
}

func TestTasksDelete(t *testing.T) {
	fake := boxtest.NewRequester().RespondWith(http.StatusNoContent, "")

	out, err := executeCommand(t, fake, "tasks", "delete", "5678")
	require.NoError(t, err)
	assert.Equal(t, "Task 5678 deleted\n", out)
	assert.Equal(t, http.MethodDelete, fake.LastCall().Method)

	out, err = executeCommand(t, fake, "tasks", "delete-assignment", "9012")
	require.NoError(t, err)
	assert.Equal(t, "Assignment 9012 deleted\n", out)
	assert.Equal(t, "/task_assignments/9012", fake.LastCall().Path)
}

func TestTasksGet_Fields(t *testing.T) {
	fake := boxtest.NewRequester()

	_, err := executeCommand(t, fake, "tasks", "get", "5678", "--fields", "message,dueAt")
	require.NoError(t, err)
	assert.Equal(t, []string{"message", "due_at"}, fake.LastCall().Query()["fields"])
}

func TestTasksAssign_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "neither user nor login", args: []string{"tasks", "assign", "5678"}},
		{name: "both user and login", args: []string{"tasks", "assign", "5678", "--user-id", "42", "--login", "jane@example.com"}},
		{name: "missing task", args: []string{"tasks", "assign", "--user-id", "42"}},
		{name: "empty user id", args: []string{"tasks", "assign", "5678", "--user-id", ""}},
		{name: "blank user id in list", args: []string{"tasks", "assign", "5678", "--user-id", "1,,2"}},
		{name: "empty login", args: []string{"tasks", "assign", "5678", "--login", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester()
			_, err := executeCommand(t, fake, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestTasksAssign_Batch(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		fake := boxtest.NewRequester().RespondWith(http.StatusCreated, `{"type":"task_assignment","id":"77"}`)

		out, err := executeCommand(t, fake, "tasks", "assign", "5678", "--user-id", "1,2", "--user-id", "3")
		require.NoError(t, err)
		assert.Len(t, fake.Calls(), 3)
		assert.Contains(t, out, `"successful": 3`)
		assert.Contains(t, out, "assignment 77 created")
	})

	t.Run("failures are reported together", func(t *testing.T) {
		fake := boxtest.NewRequester().FailWith(errors.New("connection reset"))

		out, err := executeCommand(t, fake, "tasks", "assign", "5678", "--user-id", "1,2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 errors occurred")
		assert.Contains(t, out, `"failed": 2`)
		assert.Len(t, fake.Calls(), 2)
	})
}

func TestTasksUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no fields", args: []string{"tasks", "update", "5678"}},
		{name: "unknown action", args: []string{"tasks", "update", "5678", "--action", "approve"}},
		{name: "bad due date", args: []string{"tasks", "update", "5678", "--due-at", "someday"}},
		{name: "assignment without fields", args: []string{"tasks", "update-assignment", "9012"}},
		{name: "unknown resolution state", args: []string{"tasks", "update-assignment", "9012", "--resolution-state", "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester()
			_, err := executeCommand(t, fake, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestTasksGet_APIError(t *testing.T) {
	fake := boxtest.NewRequester().RespondWith(http.StatusNotFound, `{"type":"error","status":404,"code":"not_found","message":"Not Found"}`)

	_, err := executeCommand(t, fake, "tasks", "get", "5678")
	require.Error(t, err)
	assert.True(t, box.IsNotFound(err))
}

func TestCollectionsCommands(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPath  string
		wantQuery box.Query
	}{
		{
			name:      "list",
			args:      []string{"collections", "list", "--limit", "10"},
			wantPath:  "/collections",
			wantQuery: box.Query{"limit": 10},
		},
		{
			name:     "get",
			args:     []string{"collections", "get", "11"},
			wantPath: "/collections/11",
		},
		{
			name:      "items",
			args:      []string{"collections", "items", "11", "--offset", "20"},
			wantPath:  "/collections/11/items",
			wantQuery: box.Query{"offset": 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester()

			_, err := executeCommand(t, fake, tt.args...)
			require.NoError(t, err)

			call := fake.LastCall()
			assert.Equal(t, http.MethodGet, call.Method)
			assert.Equal(t, tt.wantPath, call.Path)
			assert.Equal(t, tt.wantQuery, call.Query())
		})
	}
}

func TestCollectionsSetFolder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantBody string
		wantErr  bool
	}{
		{
			name:     "replace collections",
			args:     []string{"collections", "set-folder", "99", "11", "12"},
			wantBody: `{"collections":[{"id":"11"},{"id":"12"}]}`,
		},
		{
			name:     "clear",
			args:     []string{"collections", "set-folder", "99", "--clear"},
			wantBody: `{"collections":[]}`,
		},
		{
			name:    "no collections without clear",
			args:    []string{"collections", "set-folder", "99"},
			wantErr: true,
		},
		{
			name:    "clear with collections",
			args:    []string{"collections", "set-folder", "99", "11", "--clear"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester()

			_, err := executeCommand(t, fake, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, fake.Calls())
				return
			}
			require.NoError(t, err)

			call := fake.LastCall()
			assert.Equal(t, http.MethodPut, call.Method)
			assert.Equal(t, "/folders/99", call.Path)
			assert.JSONEq(t, tt.wantBody, call.BodyJSON())
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, boxtest.NewRequester(), "version")
	require.NoError(t, err)
	assert.Equal(t, "boxmcp version "+version+"\n", out)
}

func TestPrintBody(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printBody(&out, []byte(`{"a":1}`), "empty"))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	out.Reset()
	require.NoError(t, printBody(&out, nil, "empty"))
	assert.Equal(t, "empty\n", out.String())
}
