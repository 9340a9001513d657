package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/gateway/remote"
	"github.com/nikbrunner/favs/internal/model"
)

func newClient(t *testing.T, mux *http.ServeMux, opts ...remote.Option) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	opts = append([]remote.Option{remote.WithBackoff(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := remote.New(srv.URL+"/", "tok-123", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := remote.NormalizeBaseURL("  https://api.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", got)

	_, err = remote.NormalizeBaseURL("")
	assert.Error(t, err)
	_, err = remote.NormalizeBaseURL("api.example.com")
	assert.ErrorContains(t, err, "scheme")
}

func TestListFolders_SendsPageAndToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		writeJSON(w, http.StatusOK, map[string]any{
			"folders": []map[string]any{{"id": "f1", "name": "Lunch", "itemCount": 2}},
		})
	})
	c := newClient(t, mux)

	folders, err := c.ListFolders(context.Background(), gateway.Page{Number: 2, Size: 10})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Lunch", folders[0].Name)
	assert.Equal(t, 2, folders[0].ItemCount)
}

func TestCreateAndRenameFolder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusCreated, model.Folder{ID: "f1", Name: body.Name})
	})
	mux.HandleFunc("PATCH /v1/folders/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, model.Folder{ID: r.PathValue("id"), Name: body.Name})
	})
	c := newClient(t, mux)
	ctx := context.Background()

	created, err := c.CreateFolder(ctx, "Weekend Trips")
	require.NoError(t, err)
	assert.Equal(t, "Weekend Trips", created.Name)

	renamed, err := c.RenameFolder(ctx, "f1", "Day Trips")
	require.NoError(t, err)
	assert.Equal(t, "f1", renamed.ID)
	assert.Equal(t, "Day Trips", renamed.Name)
}

func TestDeleteFolder_NotEmpty(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("DELETE /v1/folders/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "FOLDER_NOT_EMPTY", "message": "folder holds 3 favorites"})
	})
	c := newClient(t, mux)

	err := c.DeleteFolder(context.Background(), "f1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrFolderNotEmpty))

	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load(), "conflicts are not retried")
}

func TestAddFavorite_Duplicate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/favorites", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Place    model.Place
			FolderID *string `json:"folderId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body.Place.ID)
		require.NotNil(t, body.FolderID)
		assert.Equal(t, "f1", *body.FolderID)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "DUPLICATE"})
	})
	c := newClient(t, mux)

	folderID := "f1"
	_, err := c.AddFavorite(context.Background(), model.Place{ID: "p1", Name: "Cafe"}, &folderID)
	assert.True(t, errors.Is(err, gateway.ErrDuplicate))
}

func TestRemove_NotFoundIsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v1/favorites/{placeId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /v1/folders/{id}/favorites/{placeId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	})
	c := newClient(t, mux)
	ctx := context.Background()

	assert.NoError(t, c.RemoveFavorite(ctx, "p1"))
	assert.NoError(t, c.RemoveFromFolder(ctx, "p1", "f1"))
}

func TestRemoveFromFolder_DefaultUnfavorites(t *testing.T) {
	mux := http.NewServeMux()
	var hit atomic.Bool
	mux.HandleFunc("DELETE /v1/favorites/{placeId}", func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		assert.Equal(t, "p1", r.PathValue("placeId"))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, mux)

	require.NoError(t, c.RemoveFromFolder(context.Background(), "p1", model.DefaultFolderID))
	assert.True(t, hit.Load())
}

func TestListFavoritesByFolder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/folders/{id}/favorites", func(w http.ResponseWriter, r *http.Request) {
		folderID := r.PathValue("id")
		writeJSON(w, http.StatusOK, map[string]any{
			"favorites": []model.Favorite{{ID: "m1", PlaceID: "p1", FolderID: &folderID}},
		})
	})
	c := newClient(t, mux)

	favs, err := c.ListFavoritesByFolder(context.Background(), "f1", gateway.FirstPage(20))
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "f1", *favs[0].FolderID)
}

func TestRetry_RecoverableGet(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("GET /v1/favorites", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"favorites": []model.Favorite{{ID: "m1"}}})
	})
	c := newClient(t, mux, remote.WithRetry(3))

	favs, err := c.ListAllFavorites(context.Background(), gateway.FirstPage(50))
	require.NoError(t, err)
	assert.Len(t, favs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("GET /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newClient(t, mux, remote.WithRetry(2))

	_, err := c.ListFolders(context.Background(), gateway.FirstPage(50))
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestRetry_MalformedBodyIsNotRetried(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("GET /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"folders": [`))
	})
	c := newClient(t, mux, remote.WithRetry(3))

	_, err := c.ListFolders(context.Background(), gateway.FirstPage(50))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_PostIsNotRetried(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("POST /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newClient(t, mux, remote.WithRetry(3))

	_, err := c.CreateFolder(context.Background(), "Lunch")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_UnauthorizedFailsFast(t *testing.T) {
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("GET /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newClient(t, mux, remote.WithRetry(3))

	_, err := c.ListFolders(context.Background(), gateway.FirstPage(50))
	assert.True(t, errors.Is(err, gateway.ErrUnauthorized))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTimeout_IsOrdinaryFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/folders", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	})
	c := newClient(t, mux, remote.WithHTTPTimeout(20*time.Millisecond), remote.WithRetry(0))

	_, err := c.ListFolders(context.Background(), gateway.FirstPage(50))
	require.Error(t, err)
}

func TestOptions_Invalid(t *testing.T) {
	_, err := remote.New("https://api.example.com", "t", remote.WithRetry(-1))
	assert.Error(t, err)
	_, err = remote.New("https://api.example.com", "t", remote.WithHTTPClient(nil))
	assert.Error(t, err)
	_, err = remote.New("https://api.example.com", "t", remote.WithBackoff(time.Second, time.Millisecond))
	assert.Error(t, err)
}
