package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/favs/internal/tui/layout"
)

func (a App) renderView() string {
	var body string
	switch a.mode {
	case ModeCreateFolder:
		body = a.renderModal("New folder", a.create.View())
	case ModeEdit:
		body = a.renderEdit()
	case ModeDiscardConfirm:
		body = a.renderModal("Discard changes?",
			fmt.Sprintf("Unsaved changes to %q will be lost.", a.edit.Session.Folder().Name))
	case ModeDeleteChoice:
		body = a.renderModal("Folder is not empty",
			"Keep the folder, or delete it together with every place in it?")
	default:
		body = a.renderList()
	}

	parts := []string{a.styles.Title.Render(a.title()), body}
	if a.message != "" {
		style := a.styles.Message
		if a.messageErr {
			style = a.styles.Error
		}
		parts = append(parts, style.Render(a.message))
	}
	parts = append(parts, a.styles.Help.Render(a.renderHints(a.contextualHints())))

	return a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (a App) title() string {
	if a.mode != ModeContents {
		return "Favorites"
	}
	name := a.folderID
	for _, f := range a.folders {
		if f.ID == a.folderID {
			name = f.Name
		}
	}
	return fmt.Sprintf("Favorites / %s  (page %d)", name, a.page.Number)
}

func (a App) renderList() string {
	height := layout.CalculatePaneHeight(a.height, a.layout.Pane)
	width := layout.CalculateItemWidth(a.width, a.layout.Pane)

	if a.loggedOut && a.mode == ModeFolders {
		return a.styles.Pane.Width(width).Render(
			a.styles.Empty.Render("Not signed in. Run `favs login` to sync your folders."))
	}
	if len(a.items) == 0 {
		empty := "No folders"
		if a.mode == ModeContents {
			empty = "No places in this folder"
		}
		return a.styles.Pane.Width(width).Render(a.styles.Empty.Render(empty))
	}

	offset := layout.CalculateViewportOffset(a.cursor, len(a.items), height)
	end := min(offset+height, len(a.items))
	rows := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		rows = append(rows, a.renderItem(a.items[i], i == a.cursor, width))
	}
	return a.styles.Pane.Width(width).Render(strings.Join(rows, "\n"))
}

func (a App) renderItem(item Item, selected bool, width int) string {
	style := a.styles.Item
	if selected {
		style = a.styles.ItemSelected
	}

	if item.IsFolder() {
		prefix := "▸ "
		if item.Folder.IsDefault {
			prefix = "★ "
		}
		row, _ := layout.TruncateWithPrefixSuffix(item.Title(), width-1, prefix,
			fmt.Sprintf(" (%d)", item.Folder.ItemCount), a.layout.Text)
		return style.Render(row)
	}

	row := item.Title()
	if addr := item.Favorite.Place.Address; addr != "" {
		row += "  " + addr
	}
	row, _ = layout.TruncateText(row, width-1, a.layout.Text)
	return style.Render(row)
}

func (a App) renderEdit() string {
	s := a.edit.Session
	var b strings.Builder

	if s.Folder().IsDefault {
		b.WriteString(a.styles.Folder.Render(s.Folder().Name))
	} else {
		b.WriteString(a.edit.Name.View())
	}
	b.WriteString("\n\n")

	if len(a.edit.Places) == 0 {
		b.WriteString(a.styles.Empty.Render("No places in this folder"))
	}
	start, end := layout.CalculateVisibleListItems(a.layout.Modal.MaxVisible, a.edit.Cursor, len(a.edit.Places))
	width := layout.CalculateModalWidth(a.width, a.layout.Modal.WidthPercent, a.layout.Modal) - 6
	for i := start; i < end; i++ {
		f := a.edit.Places[i]
		mark := "[ ] "
		style := a.styles.Place
		if s.IsPending(f.PlaceID) {
			mark = "[x] "
			style = a.styles.Pending
		}
		name := f.Place.Name
		if name == "" {
			name = f.PlaceID
		}
		row, _ := layout.TruncateWithPrefixSuffix(name, width, mark, "", a.layout.Text)
		if a.edit.ListFocus && i == a.edit.Cursor {
			row = a.styles.ItemSelected.Render(row)
		} else {
			row = style.Render(row)
		}
		b.WriteString(row + "\n")
	}

	if n := len(s.PendingRemovals()); n > 0 {
		b.WriteString(a.styles.Count.Render(fmt.Sprintf("\n%d place(s) will be removed", n)))
	}
	return a.renderModal("Edit folder", strings.TrimRight(b.String(), "\n"))
}

func (a App) renderModal(title, content string) string {
	width := layout.CalculateModalWidth(a.width, a.layout.Modal.WidthPercent, a.layout.Modal)
	inner := lipgloss.JoinVertical(lipgloss.Left, a.styles.Title.Render(title), "", content)
	return a.styles.Modal.Width(width).Render(inner)
}
