package model

import "fmt"

// Store holds the persisted snapshot of folders and favorite memberships.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Favorites []Favorite `json:"favorites"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Favorites: []Favorite{},
	}
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetFavoritesInFolder returns favorites filed under the given folder.
// Pass nil for favorites that are in the default folder only.
func (s *Store) GetFavoritesInFolder(folderID *string) []Favorite {
	var result []Favorite
	for _, f := range s.Favorites {
		if ptrEqual(f.FolderID, folderID) {
			result = append(result, f)
		}
	}
	return result
}

// FindMembership returns the membership of placeID in folderID, or nil.
func (s *Store) FindMembership(placeID string, folderID *string) *Favorite {
	for i := range s.Favorites {
		if s.Favorites[i].PlaceID == placeID && ptrEqual(s.Favorites[i].FolderID, folderID) {
			return &s.Favorites[i]
		}
	}
	return nil
}

// AddFolder appends a folder to the store.
func (s *Store) AddFolder(f Folder) {
	s.Folders = append(s.Folders, f)
}

// RenameFolder updates the name of an existing folder.
func (s *Store) RenameFolder(id, name string) (*Folder, error) {
	f := s.GetFolderByID(id)
	if f == nil {
		return nil, fmt.Errorf("folder not found: %s", id)
	}
	f.Name = name
	return f, nil
}

// RemoveFolder deletes a folder by ID. Memberships are left untouched.
func (s *Store) RemoveFolder(id string) error {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			s.Folders = append(s.Folders[:i], s.Folders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("folder not found: %s", id)
}

// AddFavorite appends a membership to the store.
func (s *Store) AddFavorite(f Favorite) {
	s.Favorites = append(s.Favorites, f)
}

// RemovePlace removes every membership of placeID and returns how many were removed.
func (s *Store) RemovePlace(placeID string) int {
	return s.removeWhere(func(f Favorite) bool { return f.PlaceID == placeID })
}

// RemovePlaceFromFolder removes the membership of placeID in folderID.
// Returns the number of removed records (0 or 1).
func (s *Store) RemovePlaceFromFolder(placeID string, folderID *string) int {
	return s.removeWhere(func(f Favorite) bool {
		return f.PlaceID == placeID && ptrEqual(f.FolderID, folderID)
	})
}

func (s *Store) removeWhere(match func(Favorite) bool) int {
	kept := s.Favorites[:0]
	removed := 0
	for _, f := range s.Favorites {
		if match(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.Favorites = kept
	return removed
}

// FolderStats computes the item count and latest photo of folderID over favorites.
// For the default folder every membership counts.
func FolderStats(favorites []Favorite, folderID string) (count int, latestPhoto *string) {
	var latest *Favorite
	for i := range favorites {
		f := &favorites[i]
		if !f.InFolder(folderID) {
			continue
		}
		count++
		if f.Place.PhotoURL == "" {
			continue
		}
		if latest == nil || f.CreatedAt.After(latest.CreatedAt) {
			latest = f
		}
	}
	if latest != nil {
		photo := latest.Place.PhotoURL
		latestPhoto = &photo
	}
	return count, latestPhoto
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
