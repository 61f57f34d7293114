package box

import (
	"context"
	"encoding/json"
	"net/http"
)

// Item types used in references sent to the API.
const (
	ItemTypeFile   = "file"
	ItemTypeFolder = "folder"
	ItemTypeTask   = "task"
)

// Query holds query-string parameters. Keys and values are passed through
// to the API as given.
type Query map[string]any

// Params carries the optional query string and JSON body of a request.
type Params struct {
	Query Query
	Body  any
}

// Response is the raw result of a completed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Handler receives the raw outcome of a request.
type Handler func(resp *Response, err error)

// Callback receives the outcome of an operation, error first.
// On success body holds the undecoded JSON response, which may be empty.
type Callback func(err error, body json.RawMessage)

// Requester issues requests against the API on behalf of a resource manager.
// Every request completes by invoking its Handler exactly once.
type Requester interface {
	Get(ctx context.Context, path string, params *Params, h Handler)
	Post(ctx context.Context, path string, params *Params, h Handler)
	Put(ctx context.Context, path string, params *Params, h Handler)
	Delete(ctx context.Context, path string, params *Params, h Handler)
	DefaultResponseHandler(cb Callback) Handler
}

// ItemRef identifies an item by type and ID.
type ItemRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// UserRef is the compact user representation embedded in other objects.
type UserRef struct {
	Type  string `json:"type,omitempty"`
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Login string `json:"login,omitempty"`
}

// MiniItem is the compact file or folder representation returned in listings.
type MiniItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	ETag string `json:"etag,omitempty"`
}

// Page is a page of entries from a collection endpoint.
type Page[T any] struct {
	TotalCount int `json:"total_count"`
	Entries    []T `json:"entries"`
	Offset     int `json:"offset,omitempty"`
	Limit      int `json:"limit,omitempty"`
}
