package collections

import "github.com/teemow/boxmcp/internal/box"

// Collection represents a Box collection
type Collection struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	CollectionType string `json:"collection_type"`
}

// Item is an entry of a collection listing: a file, folder or web link.
type Item = box.MiniItem

// Reference is the minimal collection record used for folder membership.
type Reference struct {
	ID string `json:"id"`
}

type updateFolderBody struct {
	Collections []Reference `json:"collections"`
}
