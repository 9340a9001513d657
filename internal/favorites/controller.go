// Package favorites keeps the user's folders and favorite memberships in sync
// with a gateway.Gateway. The Controller is the only writer of its caches.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

// Authenticator reports whether a user session with a backing credential is
// present. It is consulted on every Controller call.
type Authenticator interface {
	Authenticated() bool
}

// Params holds parameters for New.
type Params struct {
	Gateway gateway.Gateway
	Auth    Authenticator
	Logger  zerolog.Logger
	// PageSize is used for full refreshes and default pages. Zero means gateway.DefaultPageSize.
	PageSize int
}

// FolderList is the result of ListFolders. Err is set when the listing could
// not be refreshed and the folders come from the last-known cache.
type FolderList struct {
	Folders   []model.Folder
	Err       error
	LoggedOut bool
}

// FavoritePage is the result of ListByFolder.
type FavoritePage struct {
	Favorites []model.Favorite
	Err       error
	LoggedOut bool
}

// Controller sequences folder and membership workflows against the gateway.
// Gateway calls never run while mu is held.
type Controller struct {
	gw       gateway.Gateway
	auth     Authenticator
	log      zerolog.Logger
	pageSize int

	mu      sync.Mutex
	folders *folderStore
	members *membershipStore
}

// New creates a Controller. Caches start empty; call Refresh or ListFolders to fill them.
func New(p Params) *Controller {
	if p.PageSize <= 0 {
		p.PageSize = gateway.DefaultPageSize
	}
	c := &Controller{
		gw:       p.Gateway,
		auth:     p.Auth,
		log:      p.Logger,
		pageSize: p.PageSize,
	}
	c.folders = &folderStore{lock: &c.mu}
	c.members = &membershipStore{lock: &c.mu}
	return c
}

func (c *Controller) authenticated() bool {
	return c.auth != nil && c.auth.Authenticated()
}

func (c *Controller) requireAuth() error {
	if !c.authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Refresh re-fetches every folder and membership page and replaces both
// caches together. On failure the last-known caches are kept.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	folders, err := fetchAll(ctx, c.pageSize, folderKey, c.gw.ListFolders)
	if err != nil {
		return fmt.Errorf("refresh folders: %w", err)
	}
	favorites, err := fetchAll(ctx, c.pageSize, favoriteKey, c.gw.ListAllFavorites)
	if err != nil {
		return fmt.Errorf("refresh favorites: %w", err)
	}

	c.mu.Lock()
	c.folders.replace(folders)
	c.members.replace(favorites)
	c.mu.Unlock()
	return nil
}

// fetchAll pages through list until a short or empty page. A page that starts
// with the same ID as the previous one also ends the walk, so a gateway that
// ignores paging cannot loop forever.
func fetchAll[T any](ctx context.Context, size int, id func(T) string, list func(context.Context, gateway.Page) ([]T, error)) ([]T, error) {
	var (
		all       []T
		prevFirst string
	)
	for page := gateway.FirstPage(size); ; page = page.Next() {
		items, err := list(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return all, nil
		}
		first := id(items[0])
		if page.Number > 1 && first == prevFirst {
			return all, nil
		}
		prevFirst = first
		all = append(all, items...)
		if len(items) < page.Size {
			return all, nil
		}
	}
}

func folderKey(f model.Folder) string { return f.ID }
func favoriteKey(f model.Favorite) string { return f.ID }

// refreshAfterWrite refreshes after a successful write. The write already
// happened, so a failed refresh is only logged.
func (c *Controller) refreshAfterWrite(ctx context.Context, op string) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("refresh after write failed")
	}
}

// ListFolders refreshes and returns the default folder followed by the user
// folders. It never fails hard: on error the cached list is returned with Err set.
func (c *Controller) ListFolders(ctx context.Context) FolderList {
	if !c.authenticated() {
		return FolderList{Folders: []model.Folder{model.NewDefaultFolder()}, LoggedOut: true}
	}
	err := c.Refresh(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("listing folders from cache")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return FolderList{Folders: c.folders.list(c.members.favorites), Err: err}
}

// CachedFolders returns the folder list from the cache without a gateway call.
func (c *Controller) CachedFolders() []model.Folder {
	if !c.authenticated() {
		return []model.Folder{model.NewDefaultFolder()}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folders.list(c.members.favorites)
}

// CachedFavorites returns every cached membership.
func (c *Controller) CachedFavorites() []model.Favorite {
	if !c.authenticated() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members.all()
}

// ListByFolder fetches one page of folderID and merges it into the cache.
// On error the cached page is returned with Err set.
func (c *Controller) ListByFolder(ctx context.Context, folderID string, page gateway.Page) FavoritePage {
	if !c.authenticated() {
		return FavoritePage{LoggedOut: true}
	}
	if page.Size <= 0 {
		page.Size = c.pageSize
	}
	page = page.Normalize()

	var (
		favs []model.Favorite
		err  error
	)
	if model.IsDefaultID(folderID) {
		favs, err = c.gw.ListAllFavorites(ctx, page)
	} else {
		favs, err = c.gw.ListFavoritesByFolder(ctx, folderID, page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return FavoritePage{Favorites: c.members.page(folderID, page), Err: err}
	}
	c.members.merge(favs)
	return FavoritePage{Favorites: favs}
}

// CreateFolder creates a user folder. Blank names are rejected without a gateway call.
func (c *Controller) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	if err := c.requireAuth(); err != nil {
		return model.Folder{}, err
	}
	folder, err := c.folders.create(ctx, c.gw, name)
	if err != nil {
		return model.Folder{}, err
	}
	c.refreshAfterWrite(ctx, "create folder")
	return folder, nil
}

// RenameFolder renames a user folder.
func (c *Controller) RenameFolder(ctx context.Context, id, name string) (model.Folder, error) {
	if err := c.requireAuth(); err != nil {
		return model.Folder{}, err
	}
	folder, err := c.folders.rename(ctx, c.gw, id, name)
	if err != nil {
		return model.Folder{}, err
	}
	c.refreshAfterWrite(ctx, "rename folder")
	return folder, nil
}

// DeleteFolder deletes an empty user folder. A folder that still holds
// favorites fails with an error matching ErrFolderNotEmpty and stays cached.
func (c *Controller) DeleteFolder(ctx context.Context, id string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.deleteFolder(ctx, id); err != nil {
		return err
	}
	c.refreshAfterWrite(ctx, "delete folder")
	return nil
}

func (c *Controller) deleteFolder(ctx context.Context, id string) error {
	return c.folders.delete(ctx, c.gw, id, func() { c.members.clearFolder(id) })
}

// AddToFolder files place under folderID; "default" or "" saves it without a
// folder. Adding an existing pair returns the existing membership.
func (c *Controller) AddToFolder(ctx context.Context, place model.Place, folderID string) (model.Favorite, error) {
	if err := c.requireAuth(); err != nil {
		return model.Favorite{}, err
	}
	fav, err := c.members.addToFolder(ctx, c.gw, place, folderID)
	if errors.Is(err, gateway.ErrDuplicate) {
		// The cache was stale; the membership exists remotely.
		if rerr := c.Refresh(ctx); rerr != nil {
			return model.Favorite{}, err
		}
		c.mu.Lock()
		existing, ok := c.members.find(place.ID, orDefault(folderID))
		c.mu.Unlock()
		if ok {
			return existing, nil
		}
		return model.Favorite{}, err
	}
	if err != nil {
		return model.Favorite{}, err
	}
	c.refreshAfterWrite(ctx, "add favorite")
	return fav, nil
}

// Unfavorite removes placeID from every folder, including the default one.
func (c *Controller) Unfavorite(ctx context.Context, placeID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.members.unfavorite(ctx, c.gw, placeID); err != nil {
		return err
	}
	c.refreshAfterWrite(ctx, "unfavorite")
	return nil
}

// RemoveFromFolder removes placeID from folderID only; other folders keep it.
// Removing from the default folder unfavorites the place.
func (c *Controller) RemoveFromFolder(ctx context.Context, placeID, folderID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.members.removeFromFolder(ctx, c.gw, placeID, orDefault(folderID)); err != nil {
		return err
	}
	c.refreshAfterWrite(ctx, "remove from folder")
	return nil
}

func orDefault(folderID string) string {
	if folderID == "" {
		return model.DefaultFolderID
	}
	return folderID
}
