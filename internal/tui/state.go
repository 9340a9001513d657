package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/model"
	"github.com/nikbrunner/favs/internal/tui/layout"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeFolders Mode = iota
	ModeContents
	ModeCreateFolder
	ModeEdit
	ModeDiscardConfirm
	ModeDeleteChoice
)

func (m Mode) String() string {
	switch m {
	case ModeFolders:
		return "folders"
	case ModeContents:
		return "contents"
	case ModeCreateFolder:
		return "create-folder"
	case ModeEdit:
		return "edit"
	case ModeDiscardConfirm:
		return "discard-confirm"
	case ModeDeleteChoice:
		return "delete-choice"
	}
	return "unknown"
}

// EditState holds the open edit session and its form.
type EditState struct {
	Session   *favorites.EditSession
	Name      textinput.Model
	Places    []model.Favorite
	Cursor    int
	ListFocus bool // false = name input focused
}

func newNameInput(cfg layout.LayoutConfig, placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = cfg.Input.NameCharLimit
	input.Width = cfg.Input.Width
	return input
}

// Result messages of controller commands.
type (
	foldersLoadedMsg struct {
		list favorites.FolderList
	}

	placesLoadedMsg struct {
		folderID string
		page     favorites.FavoritePage
	}

	folderCreatedMsg struct {
		folder model.Folder
		err    error
	}

	editOpenedMsg struct {
		session *favorites.EditSession
		places  []model.Favorite
		err     error
	}

	savedMsg struct {
		report favorites.SaveReport
		err    error
	}

	deleteRequestedMsg struct {
		deletion *favorites.Deletion
		err      error
	}

	deleteAllDoneMsg struct {
		err error
	}
)
