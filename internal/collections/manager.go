package collections

import (
	"context"

	"github.com/teemow/boxmcp/internal/box"
)

const (
	basePath    = "/collections"
	itemsPath   = "/items"
	foldersPath = "/folders"
)

// Manager issues collection requests through a box.Requester.
type Manager struct {
	client box.Requester
}

// NewManager creates a Manager bound to client.
func NewManager(client box.Requester) *Manager {
	return &Manager{client: client}
}

// GetAll lists the collections of the current user. query is sent as given.
func (m *Manager) GetAll(ctx context.Context, query box.Query, cb box.Callback) {
	m.client.Get(ctx, box.JoinPath(basePath), &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// Get fetches a single collection.
func (m *Manager) Get(ctx context.Context, collectionID string, query box.Query, cb box.Callback) {
	m.client.Get(ctx, box.JoinPath(basePath, collectionID), &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// GetItems lists the items of a collection. query is sent as given.
func (m *Manager) GetItems(ctx context.Context, collectionID string, query box.Query, cb box.Callback) {
	path := box.JoinPath(basePath, collectionID, itemsPath)
	m.client.Get(ctx, path, &box.Params{Query: query}, m.client.DefaultResponseHandler(cb))
}

// UpdateFolderCollections replaces the collections a folder belongs to.
// An empty list removes the folder from every collection.
func (m *Manager) UpdateFolderCollections(ctx context.Context, folderID string, collectionIDs []string, cb box.Callback) {
	body := updateFolderBody{Collections: make([]Reference, 0, len(collectionIDs))}
	for _, id := range collectionIDs {
		body.Collections = append(body.Collections, Reference{ID: id})
	}

	m.client.Put(ctx, box.JoinPath(foldersPath, folderID), &box.Params{Body: body}, m.client.DefaultResponseHandler(cb))
}
