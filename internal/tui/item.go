package tui

import "github.com/nikbrunner/favs/internal/model"

// ItemKind distinguishes folder rows from place rows.
type ItemKind int

const (
	ItemFolder ItemKind = iota
	ItemPlace
)

// Item is one row of the current list.
type Item struct {
	Kind     ItemKind
	Folder   *model.Folder
	Favorite *model.Favorite
}

// ID returns the folder ID or the place ID.
func (i Item) ID() string {
	if i.Kind == ItemFolder {
		return i.Folder.ID
	}
	return i.Favorite.PlaceID
}

// Title returns a display title for the item.
func (i Item) Title() string {
	if i.Kind == ItemFolder {
		return i.Folder.Name
	}
	if i.Favorite.Place.Name == "" {
		return i.Favorite.PlaceID
	}
	return i.Favorite.Place.Name
}

// IsFolder reports whether the row is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == ItemFolder
}

func folderItems(folders []model.Folder) []Item {
	items := make([]Item, len(folders))
	for i := range folders {
		items[i] = Item{Kind: ItemFolder, Folder: &folders[i]}
	}
	return items
}

func placeItems(favs []model.Favorite) []Item {
	items := make([]Item, len(favs))
	for i := range favs {
		items[i] = Item{Kind: ItemPlace, Favorite: &favs[i]}
	}
	return items
}
