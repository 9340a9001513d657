package favorites

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

// membershipStore caches every favorite membership of the user.
type membershipStore struct {
	lock      sync.Locker
	favorites []model.Favorite
}

// all returns a copy of the cache. Caller holds lock.
func (s *membershipStore) all() []model.Favorite {
	out := make([]model.Favorite, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// inFolder returns the memberships shown in folderID, oldest first.
// The default folder holds every membership. Caller holds lock.
func (s *membershipStore) inFolder(folderID string) []model.Favorite {
	var out []model.Favorite
	for _, f := range s.favorites {
		if f.InFolder(folderID) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// page returns one page of inFolder. Caller holds lock.
func (s *membershipStore) page(folderID string, page gateway.Page) []model.Favorite {
	favs := s.inFolder(folderID)
	start, end := page.Bounds(len(favs))
	return favs[start:end]
}

// find returns the membership of placeID shown in folderID. For the default
// folder any membership of the place counts. Caller holds lock.
func (s *membershipStore) find(placeID, folderID string) (model.Favorite, bool) {
	for _, f := range s.favorites {
		if f.PlaceID == placeID && f.InFolder(folderID) {
			return f, true
		}
	}
	return model.Favorite{}, false
}

// replace swaps the cache for a fresh listing. Caller holds lock.
func (s *membershipStore) replace(favorites []model.Favorite) {
	s.favorites = append([]model.Favorite(nil), favorites...)
}

// merge upserts records by ID. Caller holds lock.
func (s *membershipStore) merge(favorites []model.Favorite) {
	for _, f := range favorites {
		s.upsert(f)
	}
}

func (s *membershipStore) upsert(fav model.Favorite) {
	for i := range s.favorites {
		if s.favorites[i].ID == fav.ID {
			s.favorites[i] = fav
			return
		}
	}
	s.favorites = append(s.favorites, fav)
}

// clearFolder drops the memberships filed under folderID. Caller holds lock.
func (s *membershipStore) clearFolder(folderID string) {
	s.removeWhere(func(f model.Favorite) bool {
		return f.FolderID != nil && *f.FolderID == folderID
	})
}

func (s *membershipStore) removeWhere(match func(model.Favorite) bool) {
	kept := s.favorites[:0]
	for _, f := range s.favorites {
		if !match(f) {
			kept = append(kept, f)
		}
	}
	s.favorites = kept
}

// addToFolder files place under folderID. A membership already cached for
// the pair is returned without a gateway call.
func (s *membershipStore) addToFolder(ctx context.Context, gw gateway.Gateway, place model.Place, folderID string) (model.Favorite, error) {
	if strings.TrimSpace(place.ID) == "" {
		return model.Favorite{}, ErrInvalidPlace
	}
	if folderID == "" {
		folderID = model.DefaultFolderID
	}

	s.lock.Lock()
	existing, ok := s.find(place.ID, folderID)
	s.lock.Unlock()
	if ok {
		return existing, nil
	}

	fav, err := commit(s.lock,
		func() (model.Favorite, error) { return gw.AddFavorite(ctx, place, model.FolderRef(folderID)) },
		s.upsert,
	)
	if err != nil {
		return model.Favorite{}, &WriteError{Op: "add favorite", FolderID: folderID, PlaceID: place.ID, Err: err}
	}
	return fav, nil
}

// unfavorite removes every membership of placeID.
func (s *membershipStore) unfavorite(ctx context.Context, gw gateway.Gateway, placeID string) error {
	_, err := commit(s.lock,
		func() (struct{}, error) { return struct{}{}, gw.RemoveFavorite(ctx, placeID) },
		func(struct{}) {
			s.removeWhere(func(f model.Favorite) bool { return f.PlaceID == placeID })
		},
	)
	if err != nil {
		return &WriteError{Op: "unfavorite", PlaceID: placeID, Err: err}
	}
	return nil
}

// removeFromFolder removes the membership of placeID in folderID only.
// For the default folder it unfavorites the place.
func (s *membershipStore) removeFromFolder(ctx context.Context, gw gateway.Gateway, placeID, folderID string) error {
	if model.IsDefaultID(folderID) {
		return s.unfavorite(ctx, gw, placeID)
	}
	_, err := commit(s.lock,
		func() (struct{}, error) { return struct{}{}, gw.RemoveFromFolder(ctx, placeID, folderID) },
		func(struct{}) {
			s.removeWhere(func(f model.Favorite) bool {
				return f.PlaceID == placeID && f.FolderID != nil && *f.FolderID == folderID
			})
		},
	)
	if err != nil {
		return &WriteError{Op: "remove from folder", FolderID: folderID, PlaceID: placeID, Err: err}
	}
	return nil
}
