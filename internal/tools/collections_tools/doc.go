// Package collections_tools provides MCP tools for Box collections such as
// Favorites.
//
//   - box_collections_list: List the user's collections
//   - box_collections_get: Get a collection
//   - box_collections_list_items: List the files, folders and web links in a collection
//   - box_collections_update_folder: Replace the collections a folder belongs to (write)
package collections_tools
