// Package boxtest provides a recording Requester for testing resource managers.
package boxtest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/teemow/boxmcp/internal/box"
)

// Call is a single request recorded by Requester.
type Call struct {
	Method string
	Path   string
	Params *box.Params
}

// BodyJSON returns the request body as JSON, or "" when there is none.
func (c Call) BodyJSON() string {
	if c.Params == nil || c.Params.Body == nil {
		return ""
	}
	data, err := json.Marshal(c.Params.Body)
	if err != nil {
		return "marshal error: " + err.Error()
	}
	return string(data)
}

// Query returns the request query, or nil when there is none.
func (c Call) Query() box.Query {
	if c.Params == nil {
		return nil
	}
	return c.Params.Query
}

// Requester records requests and completes each one synchronously with
// Response and Err.
type Requester struct {
	mu       sync.Mutex
	calls    []Call
	wrapped  int
	Response *box.Response
	Err      error
}

// NewRequester returns a Requester that answers every request with 200 and
// an empty JSON object.
func NewRequester() *Requester {
	return &Requester{
		Response: &box.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)},
	}
}

// RespondWith sets the status and body returned for subsequent requests.
func (r *Requester) RespondWith(status int, body string) *Requester {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Response = &box.Response{StatusCode: status, Body: []byte(body)}
	r.Err = nil
	return r
}

// FailWith makes subsequent requests fail with err before any response.
func (r *Requester) FailWith(err error) *Requester {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Response = nil
	r.Err = err
	return r
}

func (r *Requester) Get(_ context.Context, path string, params *box.Params, h box.Handler) {
	r.record(http.MethodGet, path, params, h)
}

func (r *Requester) Post(_ context.Context, path string, params *box.Params, h box.Handler) {
	r.record(http.MethodPost, path, params, h)
}

func (r *Requester) Put(_ context.Context, path string, params *box.Params, h box.Handler) {
	r.record(http.MethodPut, path, params, h)
}

func (r *Requester) Delete(_ context.Context, path string, params *box.Params, h box.Handler) {
	r.record(http.MethodDelete, path, params, h)
}

// DefaultResponseHandler counts how often it was asked to wrap a callback
// and returns the standard handler.
func (r *Requester) DefaultResponseHandler(cb box.Callback) box.Handler {
	r.mu.Lock()
	r.wrapped++
	r.mu.Unlock()
	return box.ResponseHandler(cb)
}

func (r *Requester) record(method, path string, params *box.Params, h box.Handler) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Path: path, Params: params})
	resp, err := r.Response, r.Err
	r.mu.Unlock()

	if h != nil {
		h(resp, err)
	}
}

// Calls returns every request recorded so far.
func (r *Requester) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// LastCall returns the most recent request. It panics if there was none.
func (r *Requester) LastCall() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		panic("boxtest: no requests recorded")
	}
	return r.calls[len(r.calls)-1]
}

// WrappedCallbacks returns how many callbacks were passed to DefaultResponseHandler.
func (r *Requester) WrappedCallbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wrapped
}

// Recorder collects the invocations of a box.Callback.
type Recorder struct {
	mu    sync.Mutex
	calls int
	Err   error
	Body  json.RawMessage
}

// Callback returns a callback that records into r.
func (r *Recorder) Callback() box.Callback {
	return func(err error, body json.RawMessage) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls++
		r.Err = err
		r.Body = body
	}
}

// Calls returns how many times the callback was invoked.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var _ box.Requester = (*Requester)(nil)
