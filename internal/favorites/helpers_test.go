package favorites_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/favs/internal/auth"
	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/gateway/local"
	"github.com/nikbrunner/favs/internal/model"
)

// memStorage keeps the snapshot in memory.
type memStorage struct{}

func (memStorage) Load() (*model.Store, error) { return model.NewStore(), nil }
func (memStorage) Save(*model.Store) error     { return nil }

// spyGateway wraps a real gateway, counting calls per operation and
// optionally failing or pausing them.
type spyGateway struct {
	gateway.Gateway

	mu     sync.Mutex
	calls  map[string]int
	order  []string
	failOn func(op string, args ...string) error
	before func(op string)
}

func newSpy(t *testing.T) *spyGateway {
	t.Helper()
	gw, err := local.New(memStorage{})
	assert.NilError(t, err)
	return &spyGateway{Gateway: gw, calls: map[string]int{}}
}

func (s *spyGateway) record(op string, args ...string) error {
	s.mu.Lock()
	s.calls[op]++
	s.order = append(s.order, op)
	fail, before := s.failOn, s.before
	s.mu.Unlock()

	if before != nil {
		before(op)
	}
	if fail != nil {
		return fail(op, args...)
	}
	return nil
}

func (s *spyGateway) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyGateway) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// writes returns the write operations in call order.
func (s *spyGateway) writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, op := range s.order {
		switch op {
		case "ListFolders", "ListAllFavorites", "ListFavoritesByFolder":
			continue
		}
		out = append(out, op)
	}
	return out
}

func (s *spyGateway) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
	s.order = nil
}

func (s *spyGateway) setFail(fn func(op string, args ...string) error) {
	s.mu.Lock()
	s.failOn = fn
	s.mu.Unlock()
}

func (s *spyGateway) setBefore(fn func(op string)) {
	s.mu.Lock()
	s.before = fn
	s.mu.Unlock()
}

func (s *spyGateway) ListFolders(ctx context.Context, page gateway.Page) ([]model.Folder, error) {
	if err := s.record("ListFolders"); err != nil {
		return nil, err
	}
	return s.Gateway.ListFolders(ctx, page)
}

func (s *spyGateway) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	if err := s.record("CreateFolder", name); err != nil {
		return model.Folder{}, err
	}
	return s.Gateway.CreateFolder(ctx, name)
}

func (s *spyGateway) RenameFolder(ctx context.Context, id, name string) (model.Folder, error) {
	if err := s.record("RenameFolder", id, name); err != nil {
		return model.Folder{}, err
	}
	return s.Gateway.RenameFolder(ctx, id, name)
}

func (s *spyGateway) DeleteFolder(ctx context.Context, id string) error {
	if err := s.record("DeleteFolder", id); err != nil {
		return err
	}
	return s.Gateway.DeleteFolder(ctx, id)
}

func (s *spyGateway) ListFavoritesByFolder(ctx context.Context, folderID string, page gateway.Page) ([]model.Favorite, error) {
	if err := s.record("ListFavoritesByFolder", folderID); err != nil {
		return nil, err
	}
	return s.Gateway.ListFavoritesByFolder(ctx, folderID, page)
}

func (s *spyGateway) ListAllFavorites(ctx context.Context, page gateway.Page) ([]model.Favorite, error) {
	if err := s.record("ListAllFavorites"); err != nil {
		return nil, err
	}
	return s.Gateway.ListAllFavorites(ctx, page)
}

func (s *spyGateway) AddFavorite(ctx context.Context, place model.Place, folderID *string) (model.Favorite, error) {
	folder := model.DefaultFolderID
	if folderID != nil {
		folder = *folderID
	}
	if err := s.record("AddFavorite", place.ID, folder); err != nil {
		return model.Favorite{}, err
	}
	return s.Gateway.AddFavorite(ctx, place, folderID)
}

func (s *spyGateway) RemoveFavorite(ctx context.Context, placeID string) error {
	if err := s.record("RemoveFavorite", placeID); err != nil {
		return err
	}
	return s.Gateway.RemoveFavorite(ctx, placeID)
}

func (s *spyGateway) RemoveFromFolder(ctx context.Context, placeID, folderID string) error {
	if err := s.record("RemoveFromFolder", placeID, folderID); err != nil {
		return err
	}
	return s.Gateway.RemoveFromFolder(ctx, placeID, folderID)
}

type fixture struct {
	ctl *favorites.Controller
	gw  *spyGateway
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gw := newSpy(t)
	ctl := favorites.New(favorites.Params{
		Gateway:  gw,
		Auth:     auth.Static(true),
		Logger:   zerolog.Nop(),
		PageSize: 2, // small pages exercise multi-page refreshes
	})
	return fixture{ctl: ctl, gw: gw}
}

func place(id string) model.Place {
	return model.Place{ID: id, Name: "Place " + id, PhotoURL: id + ".jpg"}
}

// folderWith creates a folder holding the given places and resets the call counters.
func (f fixture) folderWith(t *testing.T, name string, placeIDs ...string) model.Folder {
	t.Helper()
	ctx := context.Background()
	folder, err := f.ctl.CreateFolder(ctx, name)
	assert.NilError(t, err)
	for _, id := range placeIDs {
		_, err := f.ctl.AddToFolder(ctx, place(id), folder.ID)
		assert.NilError(t, err)
	}
	f.gw.reset()
	return folder
}

func findFolder(folders []model.Folder, id string) (model.Folder, bool) {
	for _, f := range folders {
		if f.ID == id {
			return f, true
		}
	}
	return model.Folder{}, false
}

func placeIDs(favs []model.Favorite) []string {
	out := make([]string, len(favs))
	for i, f := range favs {
		out[i] = f.PlaceID
	}
	return out
}
