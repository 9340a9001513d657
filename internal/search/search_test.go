package search

import (
	"testing"

	"github.com/nikbrunner/favs/internal/model"
)

func fav(placeID, name string, folderID *string) model.Favorite {
	return model.Favorite{
		ID:       "f-" + placeID,
		PlaceID:  placeID,
		FolderID: folderID,
		Place:    model.Place{ID: placeID, Name: name},
	}
}

func TestFuzzySearchFavorites_EmptyQuery(t *testing.T) {
	favs := []model.Favorite{fav("p1", "Blue Bottle Coffee", nil)}

	if results := FuzzySearchFavorites(favs, ""); results != nil {
		t.Errorf("expected nil for empty query, got %d results", len(results))
	}
}

func TestFuzzySearchFavorites_ExactMatch(t *testing.T) {
	favs := []model.Favorite{
		fav("p1", "Blue Bottle Coffee", nil),
		fav("p2", "Tartine Bakery", nil),
	}

	results := FuzzySearchFavorites(favs, "Tartine Bakery")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Favorite.PlaceID != "p2" {
		t.Errorf("expected p2, got %s", results[0].Favorite.PlaceID)
	}
}

func TestFuzzySearchFavorites_FuzzyMatch(t *testing.T) {
	favs := []model.Favorite{
		fav("p1", "Golden Gate Park", nil),
		fav("p2", "Gate Burger", nil),
	}

	results := FuzzySearchFavorites(favs, "ggpark")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'ggpark', got %d", len(results))
	}
	if results[0].Favorite.Place.Name != "Golden Gate Park" {
		t.Errorf("expected Golden Gate Park first, got %s", results[0].Favorite.Place.Name)
	}
}

func TestFuzzySearchFavorites_CaseInsensitive(t *testing.T) {
	favs := []model.Favorite{fav("p1", "Tartine Bakery", nil)}

	if results := FuzzySearchFavorites(favs, "tartine"); len(results) != 1 {
		t.Fatalf("expected 1 result for case-insensitive match, got %d", len(results))
	}
}

func TestFuzzySearchFavorites_NoMatch(t *testing.T) {
	favs := []model.Favorite{fav("p1", "Tartine Bakery", nil)}

	if results := FuzzySearchFavorites(favs, "xyz123"); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestFuzzySearchFavorites_PlaceMatchedOnce(t *testing.T) {
	trips := "trips"
	food := "food"
	favs := []model.Favorite{
		fav("p1", "Tartine Bakery", &trips),
		fav("p1", "Tartine Bakery", &food),
		fav("p2", "Tartine Manufactory", nil),
	}

	results := FuzzySearchFavorites(favs, "tartine")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Favorite.PlaceID == "p1" && *r.Favorite.FolderID != trips {
			t.Errorf("expected first membership of p1, got folder %s", *r.Favorite.FolderID)
		}
	}
}

func TestFuzzySearchFavorites_SortedByScore(t *testing.T) {
	favs := []model.Favorite{
		fav("p1", "Ferry Building Marketplace", nil),
		fav("p2", "Ferry", nil),
	}

	results := FuzzySearchFavorites(favs, "ferry")

	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}
	if results[0].Favorite.Place.Name != "Ferry" {
		t.Errorf("expected 'Ferry' first, got %s", results[0].Favorite.Place.Name)
	}
}
