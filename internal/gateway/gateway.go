// Package gateway defines the remote boundary used to persist folders and
// favorite memberships. Implementations live in the remote and local subpackages.
package gateway

import (
	"context"

	"github.com/nikbrunner/favs/internal/model"
)

// DefaultPageSize is used when a Page carries no size.
const DefaultPageSize = 50

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// FirstPage returns page 1 with the given size.
func FirstPage(size int) Page {
	return Page{Number: 1, Size: size}
}

// Next returns the page following p.
func (p Page) Next() Page {
	return Page{Number: p.Number + 1, Size: p.Size}
}

// Normalize fills zero or negative fields with defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	return p
}

// Bounds returns the [start, end) slice indexes of p over n items.
func (p Page) Bounds(n int) (start, end int) {
	p = p.Normalize()
	start = (p.Number - 1) * p.Size
	if start > n {
		start = n
	}
	end = start + p.Size
	if end > n {
		end = n
	}
	return start, end
}

// Gateway is the remote store of folders and favorites.
//
// The default folder is implicit: it is never returned by ListFolders and its
// ID is never sent to folder calls. A nil folderID on AddFavorite means
// default only.
type Gateway interface {
	ListFolders(ctx context.Context, page Page) ([]model.Folder, error)
	CreateFolder(ctx context.Context, name string) (model.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (model.Folder, error)
	// DeleteFolder fails with ErrFolderNotEmpty while memberships reference the folder.
	DeleteFolder(ctx context.Context, id string) error

	ListFavoritesByFolder(ctx context.Context, folderID string, page Page) ([]model.Favorite, error)
	ListAllFavorites(ctx context.Context, page Page) ([]model.Favorite, error)
	// AddFavorite is idempotent per (place, folder).
	AddFavorite(ctx context.Context, place model.Place, folderID *string) (model.Favorite, error)
	// RemoveFavorite removes every membership of the place. Unknown places succeed.
	RemoveFavorite(ctx context.Context, placeID string) error
	// RemoveFromFolder removes the single membership of the place in folderID.
	// Unknown memberships succeed.
	RemoveFromFolder(ctx context.Context, placeID, folderID string) error
}
