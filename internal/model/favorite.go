package model

import "time"

// Place is a read-only snapshot of the display data of a saved place.
type Place struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	PhotoURL string  `json:"photoUrl"`
	URL      string  `json:"url"`
	Rating   float64 `json:"rating"`
}

// Favorite is a membership record linking a place to the user's favorites,
// optionally filed under an explicit folder.
type Favorite struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"placeId"`
	FolderID  *string   `json:"folderId"` // nil = default only
	Place     Place     `json:"place"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFavoriteParams holds parameters for creating a new Favorite.
type NewFavoriteParams struct {
	Place    Place
	FolderID *string
}

// NewFavorite creates a Favorite with generated UUID and timestamp.
func NewFavorite(params NewFavoriteParams) Favorite {
	return Favorite{
		ID:        GenerateUUID(),
		PlaceID:   params.Place.ID,
		FolderID:  params.FolderID,
		Place:     params.Place,
		CreatedAt: time.Now(),
	}
}

// InFolder reports whether the favorite is filed under folderID.
// The default folder contains every favorite.
func (f Favorite) InFolder(folderID string) bool {
	if IsDefaultID(folderID) {
		return true
	}
	return f.FolderID != nil && *f.FolderID == folderID
}

// FolderKey returns the explicit folder ID, or DefaultFolderID when unfiled.
func (f Favorite) FolderKey() string {
	if f.FolderID == nil {
		return DefaultFolderID
	}
	return *f.FolderID
}

// FolderRef converts a folder ID into the FolderID form used on memberships.
// The default folder maps to nil.
func FolderRef(folderID string) *string {
	if folderID == "" || IsDefaultID(folderID) {
		return nil
	}
	id := folderID
	return &id
}
