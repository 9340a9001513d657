package favorites_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/favs/internal/auth"
	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/gateway/local"
	"github.com/nikbrunner/favs/internal/model"
)

func TestListFolders_ExactlyOneDefault(t *testing.T) {
	f := newFixture(t)
	f.folderWith(t, "Lunch", "p1")
	f.folderWith(t, "Dinner")
	f.folderWith(t, "Weekend")

	list := f.ctl.ListFolders(context.Background())
	assert.NilError(t, list.Err)
	assert.Equal(t, len(list.Folders), 4)

	defaults := 0
	for _, folder := range list.Folders {
		if folder.IsDefault {
			defaults++
			assert.Equal(t, folder.ID, model.DefaultFolderID)
			assert.Equal(t, folder.Name, model.DefaultFolderName)
		}
	}
	assert.Equal(t, defaults, 1)
}

func TestCreateFolder_BlankNameMakesNoCalls(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		t.Run("name="+name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.ctl.CreateFolder(context.Background(), name)
			assert.Assert(t, errors.Is(err, favorites.ErrInvalidName))
			assert.Equal(t, f.gw.total(), 0)
		})
	}
}

func TestDefaultFolder_IsProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.ctl.DeleteFolder(ctx, model.DefaultFolderID)
	assert.Assert(t, errors.Is(err, favorites.ErrDefaultFolder))

	_, err = f.ctl.RenameFolder(ctx, model.DefaultFolderID, "Mine")
	assert.Assert(t, errors.Is(err, favorites.ErrDefaultFolder))

	_, err = f.ctl.RequestDelete(ctx, model.DefaultFolderID)
	assert.Assert(t, errors.Is(err, favorites.ErrDefaultFolder))

	assert.Equal(t, f.gw.total(), 0)
}

func TestAddToFolder_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folderWith(t, "Lunch")

	first, err := f.ctl.AddToFolder(ctx, place("p1"), folder.ID)
	assert.NilError(t, err)
	second, err := f.ctl.AddToFolder(ctx, place("p1"), folder.ID)
	assert.NilError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, f.gw.count("AddFavorite"), 1, "cached membership needs no gateway call")

	page := f.ctl.ListByFolder(ctx, folder.ID, gateway.Page{Number: 1, Size: 10})
	assert.NilError(t, page.Err)
	assert.DeepEqual(t, placeIDs(page.Favorites), []string{"p1"})
}

func TestAddToFolder_DuplicateFromStaleCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folderWith(t, "Lunch")

	// Saved elsewhere; the controller cache does not know yet.
	_, err := f.gw.Gateway.AddFavorite(ctx, place("p1"), &folder.ID)
	assert.NilError(t, err)
	f.gw.setFail(func(op string, args ...string) error {
		if op == "AddFavorite" {
			return &gateway.APIError{Status: 409, Code: gateway.CodeDuplicate}
		}
		return nil
	})

	fav, err := f.ctl.AddToFolder(ctx, place("p1"), folder.ID)
	assert.NilError(t, err)
	assert.Equal(t, fav.PlaceID, "p1")
	assert.Equal(t, *fav.FolderID, folder.ID)
}

func TestAddToFolder_InvalidPlace(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.AddToFolder(context.Background(), model.Place{}, model.DefaultFolderID)
	assert.Assert(t, errors.Is(err, favorites.ErrInvalidPlace))
	assert.Equal(t, f.gw.total(), 0)
}

func TestRenameFolder_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folderWith(t, "Lunch")

	renamed, err := f.ctl.RenameFolder(ctx, folder.ID, "  New Name ")
	assert.NilError(t, err)
	assert.Equal(t, renamed.Name, "New Name")

	list := f.ctl.ListFolders(ctx)
	got, ok := findFolder(list.Folders, folder.ID)
	assert.Assert(t, ok)
	assert.Equal(t, got.Name, "New Name")
}

func TestRenameFolder_BlankName(t *testing.T) {
	f := newFixture(t)
	folder := f.folderWith(t, "Lunch")

	_, err := f.ctl.RenameFolder(context.Background(), folder.ID, " ")
	assert.Assert(t, errors.Is(err, favorites.ErrInvalidName))
	assert.Equal(t, f.gw.total(), 0)
}

func TestWriteFailure_LeavesCacheUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folderWith(t, "Lunch", "p1")

	boom := errors.New("connection reset")
	f.gw.setFail(func(op string, args ...string) error {
		switch op {
		case "CreateFolder", "RenameFolder", "RemoveFavorite":
			return boom
		}
		return nil
	})

	_, err := f.ctl.CreateFolder(ctx, "Dinner")
	var writeErr *favorites.WriteError
	assert.Assert(t, errors.As(err, &writeErr))
	assert.Equal(t, writeErr.Op, "create folder")
	assert.Assert(t, errors.Is(err, boom))

	_, err = f.ctl.RenameFolder(ctx, folder.ID, "Brunch")
	assert.Assert(t, is.ErrorContains(err, "rename folder folder="+folder.ID))

	err = f.ctl.Unfavorite(ctx, "p1")
	assert.Assert(t, errors.Is(err, boom))

	folders := f.ctl.CachedFolders()
	assert.Equal(t, len(folders), 2)
	got, _ := findFolder(folders, folder.ID)
	assert.Equal(t, got.Name, "Lunch")
	assert.Equal(t, got.ItemCount, 1)
}

func TestReadFailure_FallsBackToCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folderWith(t, "Lunch", "p1", "p2")

	f.gw.setFail(func(op string, args ...string) error {
		if op == "ListFolders" || op == "ListFavoritesByFolder" {
			return errors.New("timeout")
		}
		return nil
	})

	list := f.ctl.ListFolders(ctx)
	assert.ErrorContains(t, list.Err, "timeout")
	got, ok := findFolder(list.Folders, folder.ID)
	assert.Assert(t, ok, "last-known folders are still listed")
	assert.Equal(t, got.ItemCount, 2)

	page := f.ctl.ListByFolder(ctx, folder.ID, gateway.Page{Number: 1, Size: 10})
	assert.ErrorContains(t, page.Err, "timeout")
	assert.DeepEqual(t, placeIDs(page.Favorites), []string{"p1", "p2"})
}

func TestReadFailure_EmptyCacheStillHasDefault(t *testing.T) {
	f := newFixture(t)
	f.gw.setFail(func(string, ...string) error { return errors.New("offline") })

	list := f.ctl.ListFolders(context.Background())
	assert.Assert(t, list.Err != nil)
	assert.Equal(t, len(list.Folders), 1)
	assert.Assert(t, list.Folders[0].IsDefault)
}

func TestDefaultItemCount_EqualsAllFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.folderWith(t, "A", "p1", "p2")
	b := f.folderWith(t, "B", "p1")
	_, err := f.ctl.AddToFolder(ctx, place("p3"), model.DefaultFolderID)
	assert.NilError(t, err)

	all, err := f.gw.Gateway.ListAllFavorites(ctx, gateway.Page{Number: 1, Size: 100})
	assert.NilError(t, err)

	list := f.ctl.ListFolders(ctx)
	assert.NilError(t, list.Err)
	def, _ := findFolder(list.Folders, model.DefaultFolderID)
	assert.Equal(t, def.ItemCount, len(all))
	assert.Equal(t, def.ItemCount, 4)

	gotA, _ := findFolder(list.Folders, a.ID)
	gotB, _ := findFolder(list.Folders, b.ID)
	assert.Equal(t, gotA.ItemCount, 2)
	assert.Equal(t, gotB.ItemCount, 1)
}

func TestLatestPhoto_IsMostRecentInFolder(t *testing.T) {
	f := newFixture(t)
	folder := f.folderWith(t, "Lunch", "p1", "p2")

	list := f.ctl.ListFolders(context.Background())
	got, _ := findFolder(list.Folders, folder.ID)
	assert.Assert(t, got.LatestPhoto != nil)
	assert.Equal(t, *got.LatestPhoto, "p2.jpg")
}

func TestUnfavoriteVersusRemoveFromFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.folderWith(t, "A", "p1")
	b := f.folderWith(t, "B", "p1")

	assert.NilError(t, f.ctl.RemoveFromFolder(ctx, "p1", a.ID))
	list := f.ctl.ListFolders(ctx)
	gotA, _ := findFolder(list.Folders, a.ID)
	gotB, _ := findFolder(list.Folders, b.ID)
	assert.Equal(t, gotA.ItemCount, 0)
	assert.Equal(t, gotB.ItemCount, 1, "other folders keep the place")

	assert.NilError(t, f.ctl.Unfavorite(ctx, "p1"))
	list = f.ctl.ListFolders(ctx)
	def, _ := findFolder(list.Folders, model.DefaultFolderID)
	assert.Equal(t, def.ItemCount, 0)
}

func TestRemoveFromDefault_Unfavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.folderWith(t, "A", "p1")

	assert.NilError(t, f.ctl.RemoveFromFolder(ctx, "p1", model.DefaultFolderID))
	assert.Equal(t, f.gw.count("RemoveFavorite"), 1)
	assert.Equal(t, len(f.ctl.CachedFavorites()), 0)
}

func TestRefreshAfterWrite_FailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	gw := newSpy(t)
	ctl := favorites.New(favorites.Params{
		Gateway: gw,
		Auth:    auth.Static(true),
		Logger:  zerolog.New(&buf),
	})
	gw.setFail(func(op string, args ...string) error {
		if op == "ListFolders" {
			return errors.New("refresh down")
		}
		return nil
	})

	folder, err := ctl.CreateFolder(context.Background(), "Lunch")
	assert.NilError(t, err, "the write succeeded even though the refresh did not")
	assert.Equal(t, folder.Name, "Lunch")
	assert.Assert(t, is.Contains(buf.String(), "refresh after write failed"))

	_, ok := findFolder(ctl.CachedFolders(), folder.ID)
	assert.Assert(t, ok, "the created folder is committed to the cache")
}

func TestRefresh_FetchesEveryPage(t *testing.T) {
	f := newFixture(t) // page size 2
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		f.folderWith(t, name)
	}

	assert.NilError(t, f.ctl.Refresh(ctx))
	assert.Equal(t, f.gw.count("ListFolders"), 3)
	assert.Equal(t, len(f.ctl.CachedFolders()), 6)
}

func TestLoggedOut(t *testing.T) {
	gw := newSpy(t)
	session := auth.NewSession(nil, nil)
	ctl := favorites.New(favorites.Params{Gateway: gw, Auth: session, Logger: zerolog.Nop()})
	ctx := context.Background()

	list := ctl.ListFolders(ctx)
	assert.Assert(t, list.LoggedOut)
	assert.Equal(t, len(list.Folders), 1)
	assert.Assert(t, list.Folders[0].IsDefault)
	assert.Equal(t, list.Folders[0].ItemCount, 0)

	page := ctl.ListByFolder(ctx, model.DefaultFolderID, gateway.Page{})
	assert.Assert(t, page.LoggedOut)
	assert.Equal(t, len(page.Favorites), 0)

	_, err := ctl.CreateFolder(ctx, "Lunch")
	assert.Assert(t, errors.Is(err, favorites.ErrNotAuthenticated))
	_, err = ctl.AddToFolder(ctx, place("p1"), model.DefaultFolderID)
	assert.Assert(t, errors.Is(err, favorites.ErrNotAuthenticated))
	err = ctl.Unfavorite(ctx, "p1")
	assert.Assert(t, errors.Is(err, favorites.ErrNotAuthenticated))
	_, err = ctl.OpenSession(model.DefaultFolderID)
	assert.Assert(t, errors.Is(err, favorites.ErrNotAuthenticated))

	assert.Equal(t, gw.total(), 0)

	// Signing in takes effect on the next call.
	session.Set(&auth.Credentials{Token: "t"})
	list = ctl.ListFolders(ctx)
	assert.Assert(t, !list.LoggedOut)
	assert.Assert(t, gw.total() > 0)
}

func TestEndToEnd_WeekendTrips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list := f.ctl.ListFolders(ctx)
	assert.NilError(t, list.Err)
	assert.Equal(t, len(list.Folders), 1)

	folder, err := f.ctl.CreateFolder(ctx, "Weekend Trips")
	assert.NilError(t, err)

	_, err = f.ctl.AddToFolder(ctx, model.Place{ID: "place-1"}, folder.ID)
	assert.NilError(t, err)

	list = f.ctl.ListFolders(ctx)
	assert.NilError(t, list.Err)
	assert.Equal(t, len(list.Folders), 2)
	def, _ := findFolder(list.Folders, model.DefaultFolderID)
	assert.Equal(t, def.ItemCount, 1)
	trips, ok := findFolder(list.Folders, folder.ID)
	assert.Assert(t, ok)
	assert.Equal(t, trips.Name, "Weekend Trips")
	assert.Equal(t, trips.ItemCount, 1)

	assert.NilError(t, f.ctl.RemoveFromFolder(ctx, "place-1", folder.ID))
	assert.NilError(t, f.ctl.DeleteFolder(ctx, folder.ID))

	list = f.ctl.ListFolders(ctx)
	assert.NilError(t, list.Err)
	assert.Equal(t, len(list.Folders), 1)
	assert.Assert(t, list.Folders[0].IsDefault)
}

func TestRemoveFromFolder_KeepsUnfiledFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctl.AddToFolder(ctx, place("p1"), model.DefaultFolderID)
	assert.NilError(t, err)
	trips := f.folderWith(t, "Trips", "p1")

	assert.NilError(t, f.ctl.RemoveFromFolder(ctx, "p1", trips.ID))

	page := f.ctl.ListByFolder(ctx, model.DefaultFolderID, gateway.Page{Number: 1, Size: 10})
	assert.NilError(t, page.Err)
	assert.DeepEqual(t, placeIDs(page.Favorites), []string{"p1"})
	assert.Equal(t, f.gw.count("RemoveFavorite"), 0)
}

func TestDeleteFolderWithContents_KeepsUnfiledFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctl.AddToFolder(ctx, place("p1"), model.DefaultFolderID)
	assert.NilError(t, err)
	trips := f.folderWith(t, "Trips", "p1")

	assert.NilError(t, f.ctl.DeleteFolderWithContents(ctx, trips.ID))

	list := f.ctl.ListFolders(ctx)
	assert.NilError(t, list.Err)
	assert.Equal(t, len(list.Folders), 1)
	assert.Equal(t, list.Folders[0].ItemCount, 1)
}

// unpagedGateway returns every item on every page.
type unpagedGateway struct {
	gateway.Gateway
}

var everything = gateway.Page{Number: 1, Size: 1000}

func (g unpagedGateway) ListFolders(ctx context.Context, _ gateway.Page) ([]model.Folder, error) {
	return g.Gateway.ListFolders(ctx, everything)
}

func (g unpagedGateway) ListAllFavorites(ctx context.Context, _ gateway.Page) ([]model.Favorite, error) {
	return g.Gateway.ListAllFavorites(ctx, everything)
}

func (g unpagedGateway) ListFavoritesByFolder(ctx context.Context, folderID string, _ gateway.Page) ([]model.Favorite, error) {
	return g.Gateway.ListFavoritesByFolder(ctx, folderID, everything)
}

func TestRefresh_GatewayIgnoringPages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	base, err := local.New(memStorage{})
	assert.NilError(t, err)
	trips, err := base.CreateFolder(ctx, "Trips")
	assert.NilError(t, err)
	for _, name := range []string{"A", "B"} {
		_, err := base.CreateFolder(ctx, name)
		assert.NilError(t, err)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := base.AddFavorite(ctx, place(id), &trips.ID)
		assert.NilError(t, err)
	}

	ctl := favorites.New(favorites.Params{
		Gateway:  unpagedGateway{Gateway: base},
		Auth:     auth.Static(true),
		Logger:   zerolog.Nop(),
		PageSize: 2,
	})

	assert.NilError(t, ctl.Refresh(ctx))
	assert.Equal(t, len(ctl.CachedFolders()), 4)
	assert.Equal(t, len(ctl.CachedFavorites()), 3)

	assert.NilError(t, ctl.DeleteFolderWithContents(ctx, trips.ID))
	assert.Equal(t, len(ctl.CachedFolders()), 3)
}
