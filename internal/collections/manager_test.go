package collections

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/box/boxtest"
)

func TestManager_GetAll(t *testing.T) {
	fake := boxtest.NewRequester()
	query := box.Query{"fields": "name"}

	NewManager(fake).GetAll(context.Background(), query, nil)

	call := fake.LastCall()
	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, "/collections", call.Path)
	assert.Equal(t, query, call.Query())
	assert.Empty(t, call.BodyJSON())
}

func TestManager_Get(t *testing.T) {
	fake := boxtest.NewRequester()

	NewManager(fake).Get(context.Background(), "1234", nil, nil)

	call := fake.LastCall()
	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, "/collections/1234", call.Path)
}

func TestManager_GetItems(t *testing.T) {
	fake := boxtest.NewRequester()
	query := box.Query{"testQSKey": "testQSValue"}

	NewManager(fake).GetItems(context.Background(), "1234", query, nil)

	call := fake.LastCall()
	assert.Equal(t, http.MethodGet, call.Method)
	assert.Equal(t, "/collections/1234/items", call.Path)
	assert.Equal(t, box.Query{"testQSKey": "testQSValue"}, call.Query())
}

func TestManager_EmptyIDKeepsPathShape(t *testing.T) {
	fake := boxtest.NewRequester()
	m := NewManager(fake)

	m.GetItems(context.Background(), "", nil, nil)
	assert.Equal(t, "/collections//items", fake.LastCall().Path)

	m.UpdateFolderCollections(context.Background(), "", []string{"1234"}, nil)
	assert.Equal(t, "/folders/", fake.LastCall().Path)
}

func TestManager_UpdateFolderCollections(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		wantBody string
	}{
		{name: "two collections", ids: []string{"1234", "5678"}, wantBody: `{"collections":[{"id":"1234"},{"id":"5678"}]}`},
		{name: "single collection", ids: []string{"1234"}, wantBody: `{"collections":[{"id":"1234"}]}`},
		{name: "empty list clears membership", ids: []string{}, wantBody: `{"collections":[]}`},
		{name: "nil list clears membership", ids: nil, wantBody: `{"collections":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := boxtest.NewRequester()

			NewManager(fake).UpdateFolderCollections(context.Background(), "4567", tt.ids, nil)

			call := fake.LastCall()
			assert.Equal(t, http.MethodPut, call.Method)
			assert.Equal(t, "/folders/4567", call.Path)
			assert.JSONEq(t, tt.wantBody, call.BodyJSON())
		})
	}
}

func TestManager_CallbackWrappedByDefaultResponseHandler(t *testing.T) {
	ctx := context.Background()

	ops := map[string]func(m *Manager, cb box.Callback){
		"get all":       func(m *Manager, cb box.Callback) { m.GetAll(ctx, nil, cb) },
		"get items":     func(m *Manager, cb box.Callback) { m.GetItems(ctx, "1234", nil, cb) },
		"update folder": func(m *Manager, cb box.Callback) { m.UpdateFolderCollections(ctx, "4567", []string{"1234"}, cb) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			fake := boxtest.NewRequester().RespondWith(http.StatusOK, `{"total_count":0,"entries":[]}`)
			var rec boxtest.Recorder

			op(NewManager(fake), rec.Callback())

			assert.Equal(t, 1, fake.WrappedCallbacks())
			require.Equal(t, 1, rec.Calls())
			assert.NoError(t, rec.Err)
		})
	}
}

func TestManager_DecodeCollections(t *testing.T) {
	fake := boxtest.NewRequester().RespondWith(http.StatusOK, `{
		"total_count": 1,
		"entries": [{"type": "collection", "id": "926489", "name": "Favorites", "collection_type": "favorites"}],
		"limit": 100,
		"offset": 0
	}`)

	body, err := box.Await(context.Background(), func(cb box.Callback) {
		NewManager(fake).GetAll(context.Background(), nil, cb)
	})
	require.NoError(t, err)

	page, err := box.Decode[box.Page[Collection]](body)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "favorites", page.Entries[0].CollectionType)
}
