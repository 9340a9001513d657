package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

// Controller calls run off the update loop as commands that report back
// through the result messages in state.go.

func (a App) loadFolders() tea.Cmd {
	ctl, ctx := a.ctl, a.ctx
	return func() tea.Msg {
		return foldersLoadedMsg{list: ctl.ListFolders(ctx)}
	}
}

func (a App) loadPlaces(folderID string, page gateway.Page) tea.Cmd {
	ctl, ctx := a.ctl, a.ctx
	return func() tea.Msg {
		return placesLoadedMsg{folderID: folderID, page: ctl.ListByFolder(ctx, folderID, page)}
	}
}

func (a App) createFolder(name string) tea.Cmd {
	ctl, ctx := a.ctl, a.ctx
	return func() tea.Msg {
		folder, err := ctl.CreateFolder(ctx, name)
		return folderCreatedMsg{folder: folder, err: err}
	}
}

func (a App) openEdit(folderID string) tea.Cmd {
	ctl, ctx, size := a.ctl, a.ctx, a.pageSize
	return func() tea.Msg {
		session, err := ctl.OpenSession(folderID)
		if err != nil {
			return editOpenedMsg{err: err}
		}
		return editOpenedMsg{session: session, places: allPlaces(ctx, ctl, folderID, size)}
	}
}

// allPlaces pages through folderID until a short page or a failed read.
func allPlaces(ctx context.Context, ctl *favorites.Controller, folderID string, size int) []model.Favorite {
	var out []model.Favorite
	for page := gateway.FirstPage(size); ; page = page.Next() {
		res := ctl.ListByFolder(ctx, folderID, page)
		out = append(out, res.Favorites...)
		if res.Err != nil || len(res.Favorites) < page.Size {
			return out
		}
	}
}

func (a App) saveEdit(s *favorites.EditSession) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		report, err := s.Save(ctx)
		return savedMsg{report: report, err: err}
	}
}

func (a App) requestDelete(folderID string) tea.Cmd {
	ctl, ctx := a.ctl, a.ctx
	return func() tea.Msg {
		d, err := ctl.RequestDelete(ctx, folderID)
		return deleteRequestedMsg{deletion: d, err: err}
	}
}

func (a App) deleteAll(d *favorites.Deletion) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return deleteAllDoneMsg{err: d.DeleteAll(ctx)}
	}
}
