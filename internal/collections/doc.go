// Package collections manages Box collections.
//
// Collections are per-user groupings of files and folders; "Favorites" is
// the one every user has. Folder membership is changed through the folder
// itself by replacing its full list of collections.
package collections
