// Package tasks manages Box tasks and task assignments.
//
// A task asks its assignees to review a file. Assignments link a task to a
// single user, identified either by user ID or by login, and carry the
// user's resolution state.
//
// The Manager is a thin facade over a box.Requester: each method builds one
// request (path, query, body) and hands it to the requester together with the
// caller's callback wrapped by the requester's DefaultResponseHandler. The
// Manager keeps no state between calls, performs no retries and does not
// validate input beyond leaving out optional fields that were not given.
//
// # Example Usage
//
//	manager := tasks.NewManager(client)
//
//	body, err := box.Await(ctx, func(cb box.Callback) {
//	    manager.Create(ctx, "1234", &tasks.CreateOptions{
//	        Message: "Please review",
//	        DueAt:   "2026-11-01T10:00:00Z",
//	    }, cb)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	task, err := box.Decode[tasks.Task](body)
//
// Wire format:
//
//	POST /tasks               {"item":{"type":"file","id":"1234"},"action":"review",...}
//	GET  /tasks/{id}/assignments
//	POST /task_assignments    {"item":{"type":"task","id":"..."},"assign_to":{"id":"..."}}
//	PUT  /task_assignments/{id} {"message":"...","resolution_state":"approved"}
package tasks
