// Package local implements gateway.Gateway over a snapshot file so the app
// works without a remote backend.
package local

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
	"github.com/nikbrunner/favs/internal/storage"
)

// Gateway serves folder and favorite calls from a storage.Storage snapshot.
// Every successful write is persisted before returning.
type Gateway struct {
	mu      sync.Mutex
	storage storage.Storage
	store   *model.Store
}

var _ gateway.Gateway = (*Gateway)(nil)

// New loads the snapshot from s.
func New(s storage.Storage) (*Gateway, error) {
	store, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &Gateway{storage: s, store: store}, nil
}

func (g *Gateway) ListFolders(ctx context.Context, page gateway.Page) ([]model.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	folders := make([]model.Folder, len(g.store.Folders))
	copy(folders, g.store.Folders)
	sort.SliceStable(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})
	for i := range folders {
		folders[i].ItemCount, folders[i].LatestPhoto = model.FolderStats(g.store.Favorites, folders[i].ID)
	}

	start, end := page.Bounds(len(folders))
	return folders[start:end], nil
}

func (g *Gateway) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	if err := ctx.Err(); err != nil {
		return model.Folder{}, err
	}
	if strings.TrimSpace(name) == "" {
		return model.Folder{}, validationError("folder name is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	folder := model.NewFolder(model.NewFolderParams{Name: name})
	g.store.AddFolder(folder)
	if err := g.persist(); err != nil {
		_ = g.store.RemoveFolder(folder.ID)
		return model.Folder{}, err
	}
	return folder, nil
}

func (g *Gateway) RenameFolder(ctx context.Context, id, name string) (model.Folder, error) {
	if err := ctx.Err(); err != nil {
		return model.Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, validationError("folder name is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.store.GetFolderByID(id)
	if f == nil {
		return model.Folder{}, notFound("folder", id)
	}
	previous := f.Name
	f.Name = name
	if err := g.persist(); err != nil {
		f.Name = previous
		return model.Folder{}, err
	}
	renamed := *f
	renamed.ItemCount, renamed.LatestPhoto = model.FolderStats(g.store.Favorites, id)
	return renamed, nil
}

func (g *Gateway) DeleteFolder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.store.GetFolderByID(id) == nil {
		return notFound("folder", id)
	}
	if n := len(g.store.GetFavoritesInFolder(&id)); n > 0 {
		return &gateway.APIError{
			Status:  409,
			Code:    gateway.CodeFolderNotEmpty,
			Message: fmt.Sprintf("folder holds %d favorites", n),
		}
	}

	snapshot := g.snapshot()
	if err := g.store.RemoveFolder(id); err != nil {
		return err
	}
	if err := g.persist(); err != nil {
		g.store = snapshot
		return err
	}
	return nil
}

func (g *Gateway) ListFavoritesByFolder(ctx context.Context, folderID string, page gateway.Page) ([]model.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if !model.IsDefaultID(folderID) && g.store.GetFolderByID(folderID) == nil {
		return nil, notFound("folder", folderID)
	}
	var matching []model.Favorite
	for _, f := range g.store.Favorites {
		if f.InFolder(folderID) {
			matching = append(matching, f)
		}
	}
	return paginate(matching, page), nil
}

func (g *Gateway) ListAllFavorites(ctx context.Context, page gateway.Page) ([]model.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	all := make([]model.Favorite, len(g.store.Favorites))
	copy(all, g.store.Favorites)
	return paginate(all, page), nil
}

func (g *Gateway) AddFavorite(ctx context.Context, place model.Place, folderID *string) (model.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return model.Favorite{}, err
	}
	if strings.TrimSpace(place.ID) == "" {
		return model.Favorite{}, validationError("place id is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if folderID != nil && g.store.GetFolderByID(*folderID) == nil {
		return model.Favorite{}, notFound("folder", *folderID)
	}
	if existing := g.store.FindMembership(place.ID, folderID); existing != nil {
		return *existing, nil
	}

	snapshot := g.snapshot()
	// A default-only record stays as is; filing the place adds a folder record.
	added := model.NewFavorite(model.NewFavoriteParams{Place: place, FolderID: folderID})
	g.store.AddFavorite(added)

	if err := g.persist(); err != nil {
		g.store = snapshot
		return model.Favorite{}, err
	}
	return added, nil
}

func (g *Gateway) RemoveFavorite(ctx context.Context, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := g.snapshot()
	if g.store.RemovePlace(placeID) == 0 {
		return nil
	}
	if err := g.persist(); err != nil {
		g.store = snapshot
		return err
	}
	return nil
}

func (g *Gateway) RemoveFromFolder(ctx context.Context, placeID, folderID string) error {
	if model.IsDefaultID(folderID) {
		return g.RemoveFavorite(ctx, placeID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := g.snapshot()
	if g.store.RemovePlaceFromFolder(placeID, &folderID) == 0 {
		return nil
	}
	if err := g.persist(); err != nil {
		g.store = snapshot
		return err
	}
	return nil
}

// persist must be called with g.mu held.
func (g *Gateway) persist() error {
	if err := g.storage.Save(g.store); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// snapshot copies the store so a failed persist can be rolled back.
func (g *Gateway) snapshot() *model.Store {
	s := &model.Store{
		Folders:   make([]model.Folder, len(g.store.Folders)),
		Favorites: make([]model.Favorite, len(g.store.Favorites)),
	}
	copy(s.Folders, g.store.Folders)
	copy(s.Favorites, g.store.Favorites)
	return s
}

func paginate(favorites []model.Favorite, page gateway.Page) []model.Favorite {
	sort.SliceStable(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.Before(favorites[j].CreatedAt)
	})
	start, end := page.Bounds(len(favorites))
	return favorites[start:end]
}

func notFound(kind, id string) error {
	return &gateway.APIError{Status: 404, Code: gateway.CodeNotFound, Message: kind + " " + id + " not found"}
}

func validationError(msg string) error {
	return &gateway.APIError{Status: 400, Code: gateway.CodeValidation, Message: msg}
}
