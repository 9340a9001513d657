package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/favs/internal/model"
)

// SearchResult is a saved place matching a query.
type SearchResult struct {
	Favorite       model.Favorite
	MatchedIndexes []int
	Score          int
}

// placeNames implements fuzzy.Source over favorites.
type placeNames []model.Favorite

func (p placeNames) String(i int) string {
	return p[i].Place.Name
}

func (p placeNames) Len() int {
	return len(p)
}

// FuzzySearchFavorites matches query against place names. A place filed in
// several folders is matched once, through its first membership. Results are
// sorted best first.
func FuzzySearchFavorites(favs []model.Favorite, query string) []SearchResult {
	if query == "" {
		return nil
	}

	seen := make(map[string]bool, len(favs))
	places := make(placeNames, 0, len(favs))
	for _, f := range favs {
		if seen[f.PlaceID] {
			continue
		}
		seen[f.PlaceID] = true
		places = append(places, f)
	}

	matches := fuzzy.FindFrom(query, places)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Favorite:       places[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
