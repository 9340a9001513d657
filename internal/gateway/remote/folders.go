package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

type folderListResponse struct {
	Folders []model.Folder `json:"folders"`
}

type folderRequest struct {
	Name string `json:"name"`
}

// ListFolders fetches one page of user folders.
func (c *Client) ListFolders(ctx context.Context, page gateway.Page) ([]model.Folder, error) {
	var resp folderListResponse
	if err := c.do(ctx, "list_folders", http.MethodGet, "/v1/folders", pageQuery(page), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// CreateFolder creates a folder named name.
func (c *Client) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	var folder model.Folder
	if err := c.do(ctx, "create_folder", http.MethodPost, "/v1/folders", nil, folderRequest{Name: name}, &folder); err != nil {
		return model.Folder{}, err
	}
	return folder, nil
}

// RenameFolder renames folder id.
func (c *Client) RenameFolder(ctx context.Context, id, name string) (model.Folder, error) {
	var folder model.Folder
	if err := c.do(ctx, "rename_folder", http.MethodPatch, folderPath(id), nil, folderRequest{Name: name}, &folder); err != nil {
		return model.Folder{}, err
	}
	return folder, nil
}

// DeleteFolder deletes folder id. A folder with memberships is rejected
// with a FOLDER_NOT_EMPTY error.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, "delete_folder", http.MethodDelete, folderPath(id), nil, nil, nil)
}

func folderPath(id string) string {
	return "/v1/folders/" + url.PathEscape(id)
}

func pageQuery(page gateway.Page) url.Values {
	page = page.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Number))
	query.Set("page_size", strconv.Itoa(page.Size))
	return query
}
