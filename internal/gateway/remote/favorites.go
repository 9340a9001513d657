package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

type favoriteListResponse struct {
	Favorites []model.Favorite `json:"favorites"`
}

type addFavoriteRequest struct {
	Place    model.Place `json:"place"`
	FolderID *string     `json:"folderId"`
}

// ListFavoritesByFolder fetches one page of memberships of folderID.
func (c *Client) ListFavoritesByFolder(ctx context.Context, folderID string, page gateway.Page) ([]model.Favorite, error) {
	var resp favoriteListResponse
	if err := c.do(ctx, "list_folder_favorites", http.MethodGet, folderPath(folderID)+"/favorites", pageQuery(page), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// ListAllFavorites fetches one page of every membership.
func (c *Client) ListAllFavorites(ctx context.Context, page gateway.Page) ([]model.Favorite, error) {
	var resp favoriteListResponse
	if err := c.do(ctx, "list_favorites", http.MethodGet, "/v1/favorites", pageQuery(page), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite saves place, filed under folderID when non-nil.
// A DUPLICATE conflict satisfies errors.Is(err, gateway.ErrDuplicate).
func (c *Client) AddFavorite(ctx context.Context, place model.Place, folderID *string) (model.Favorite, error) {
	var fav model.Favorite
	req := addFavoriteRequest{Place: place, FolderID: folderID}
	if err := c.do(ctx, "add_favorite", http.MethodPost, "/v1/favorites", nil, req, &fav); err != nil {
		return model.Favorite{}, err
	}
	return fav, nil
}

// RemoveFavorite removes every membership of placeID.
func (c *Client) RemoveFavorite(ctx context.Context, placeID string) error {
	err := c.do(ctx, "remove_favorite", http.MethodDelete, "/v1/favorites/"+url.PathEscape(placeID), nil, nil, nil)
	return ignoreNotFound(err)
}

// RemoveFromFolder removes the membership of placeID in folderID.
func (c *Client) RemoveFromFolder(ctx context.Context, placeID, folderID string) error {
	if model.IsDefaultID(folderID) {
		return c.RemoveFavorite(ctx, placeID)
	}
	path := folderPath(folderID) + "/favorites/" + url.PathEscape(placeID)
	err := c.do(ctx, "remove_from_folder", http.MethodDelete, path, nil, nil, nil)
	return ignoreNotFound(err)
}

// ignoreNotFound treats removal of an absent record as done.
func ignoreNotFound(err error) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return nil
	}
	return err
}
