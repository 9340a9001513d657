package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
	"github.com/nikbrunner/favs/internal/tui/layout"
)

// App is the bubbletea model over a favorites.Controller.
type App struct {
	ctl       *favorites.Controller
	ctx       context.Context
	keys      KeyMap
	styles    Styles
	layout    layout.LayoutConfig
	clipboard func(string) error
	pageSize  int

	mode       Mode
	returnMode Mode
	loggedOut  bool

	folders  []model.Folder
	folderID string // open folder in ModeContents
	page     gateway.Page
	items    []Item
	cursor   int

	create   textinput.Model
	edit     EditState
	deletion *favorites.Deletion

	message    string
	messageErr bool

	// For gg command
	lastKeyWasG bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Controller   *favorites.Controller
	Context      context.Context     // optional, defaults to Background
	PageSize     int                 // optional, defaults to gateway.DefaultPageSize
	Keys         *KeyMap             // optional, uses default if nil
	Styles       *Styles             // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Clipboard    func(string) error  // optional, defaults to the system clipboard
}

// NewApp creates a new App. Folders are loaded by Init.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = gateway.DefaultPageSize
	}
	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	return App{
		ctl:       params.Controller,
		ctx:       ctx,
		keys:      keys,
		styles:    styles,
		layout:    cfg,
		clipboard: copyFn,
		pageSize:  pageSize,
		mode:      ModeFolders,
		create:    newNameInput(cfg, "Folder name"),
		width:     80,
		height:    24,
	}
}

// WithDimensions returns a copy of the App sized for width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode { return a.mode }

// Cursor returns the selected row.
func (a App) Cursor() int { return a.cursor }

// Items returns the rows of the current list.
func (a App) Items() []Item { return a.items }

// Message returns the status line text.
func (a App) Message() string { return a.message }

// Session returns the open edit session, if any.
func (a App) Session() *favorites.EditSession { return a.edit.Session }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.loadFolders()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case foldersLoadedMsg:
		a.loggedOut = msg.list.LoggedOut
		a.folders = msg.list.Folders
		if msg.list.Err != nil {
			a.setError("refresh failed, showing cached folders", msg.list.Err)
		}
		if a.mode == ModeFolders {
			a.setItems(folderItems(a.folders))
		}
		return a, nil

	case placesLoadedMsg:
		if a.mode != ModeContents || msg.folderID != a.folderID {
			return a, nil
		}
		if msg.page.Err != nil {
			a.setError("load failed, showing cached places", msg.page.Err)
		}
		a.setItems(placeItems(msg.page.Favorites))
		return a, nil

	case folderCreatedMsg:
		if msg.err != nil {
			a.setError("create folder", msg.err)
			return a, nil
		}
		a.setMessage(fmt.Sprintf("Created %q", msg.folder.Name))
		return a, a.loadFolders()

	case editOpenedMsg:
		return a.handleEditOpened(msg)

	case savedMsg:
		return a.handleSaved(msg)

	case deleteRequestedMsg:
		return a.handleDeleteRequested(msg)

	case deleteAllDoneMsg:
		a.deletion = nil
		if msg.err != nil {
			a.setError("delete folder with contents", msg.err)
		} else {
			a.setMessage("Deleted folder and its places")
		}
		return a, a.loadFolders()

	case tea.KeyMsg:
		switch a.mode {
		case ModeFolders:
			return a.handleFoldersKey(msg)
		case ModeContents:
			return a.handleContentsKey(msg)
		case ModeCreateFolder:
			return a.handleCreateKey(msg)
		case ModeEdit:
			return a.handleEditKey(msg)
		case ModeDiscardConfirm:
			return a.handleDiscardKey(msg)
		case ModeDeleteChoice:
			return a.handleDeleteChoiceKey(msg)
		}
	}

	return a, nil
}

func (a *App) setItems(items []Item) {
	a.items = items
	a.cursor = min(a.cursor, max(len(items)-1, 0))
}

func (a *App) setMessage(msg string) {
	a.message = msg
	a.messageErr = false
}

func (a *App) setError(op string, err error) {
	a.message = describe(op, err)
	a.messageErr = true
}

// describe turns controller errors into a status line.
func describe(op string, err error) string {
	switch {
	case errors.Is(err, favorites.ErrNotAuthenticated):
		return "Not signed in"
	case errors.Is(err, favorites.ErrDefaultFolder):
		return "Favourites cannot be renamed or deleted"
	case errors.Is(err, favorites.ErrInvalidName):
		return "Folder name cannot be blank"
	case errors.Is(err, favorites.ErrSessionBusy):
		return "Still saving"
	}
	return fmt.Sprintf("%s: %v", op, err)
}

func (a App) selected() (Item, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return Item{}, false
	}
	return a.items[a.cursor], true
}

// navigate handles cursor movement shared by the list modes.
func (a *App) navigate(msg tea.KeyMsg) bool {
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
		} else {
			a.lastKeyWasG = true
		}
		return true
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Bottom):
		a.cursor = max(len(a.items)-1, 0)
	default:
		return false
	}
	return true
}

func (a App) handleFoldersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.navigate(msg) {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadFolders()

	case key.Matches(msg, a.keys.Open):
		item, ok := a.selected()
		if !ok || a.loggedOut {
			return a, nil
		}
		a.mode = ModeContents
		a.folderID = item.Folder.ID
		a.page = gateway.FirstPage(a.pageSize)
		a.items = nil
		a.cursor = 0
		return a, a.loadPlaces(a.folderID, a.page)

	case key.Matches(msg, a.keys.Create):
		a.mode = ModeCreateFolder
		a.create.Reset()
		a.create.Cursor.SetMode(cursor.CursorStatic)
		return a, a.create.Focus()

	case key.Matches(msg, a.keys.Edit):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		a.returnMode = ModeFolders
		return a, a.openEdit(item.Folder.ID)

	case key.Matches(msg, a.keys.Delete):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		if item.Folder.IsDefault {
			a.setError("delete folder", favorites.ErrDefaultFolder)
			return a, nil
		}
		return a, a.requestDelete(item.Folder.ID)
	}
	return a, nil
}

func (a App) handleContentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.navigate(msg) {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Back):
		a.mode = ModeFolders
		a.items = folderItems(a.folders)
		a.cursor = 0
		for i, f := range a.folders {
			if f.ID == a.folderID {
				a.cursor = i
			}
		}
		return a, nil

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadPlaces(a.folderID, a.page)

	case key.Matches(msg, a.keys.NextPage):
		if len(a.items) < a.page.Size {
			return a, nil
		}
		a.page = a.page.Next()
		a.cursor = 0
		return a, a.loadPlaces(a.folderID, a.page)

	case key.Matches(msg, a.keys.PrevPage):
		if a.page.Number <= 1 {
			return a, nil
		}
		a.page = gateway.Page{Number: a.page.Number - 1, Size: a.page.Size}
		a.cursor = 0
		return a, a.loadPlaces(a.folderID, a.page)

	case key.Matches(msg, a.keys.Edit):
		a.returnMode = ModeContents
		return a, a.openEdit(a.folderID)

	case key.Matches(msg, a.keys.Yank):
		item, ok := a.selected()
		if !ok {
			return a, nil
		}
		address := item.Favorite.Place.Address
		if address == "" {
			a.setMessage("No address to copy")
			return a, nil
		}
		if err := a.clipboard(address); err != nil {
			a.setError("copy address", err)
			return a, nil
		}
		a.setMessage("Copied " + address)
	}
	return a, nil
}

func (a App) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.create.Blur()
		a.mode = ModeFolders
		return a, nil

	case msg.Type == tea.KeyEnter:
		name := a.create.Value()
		a.create.Blur()
		a.mode = ModeFolders
		return a, a.createFolder(name)
	}

	var cmd tea.Cmd
	a.create, cmd = a.create.Update(msg)
	return a, cmd
}

func (a App) handleEditOpened(msg editOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setError("edit folder", msg.err)
		return a, nil
	}
	folder := msg.session.Folder()
	name := newNameInput(a.layout, "Folder name")
	name.Cursor.SetMode(cursor.CursorStatic)
	name.SetValue(folder.Name)

	a.edit = EditState{
		Session:   msg.session,
		Name:      name,
		Places:    msg.places,
		ListFocus: folder.IsDefault,
	}
	a.mode = ModeEdit
	a.message = ""
	if folder.IsDefault {
		return a, nil
	}
	return a, a.edit.Name.Focus()
}

func (a App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.edit.Session

	switch {
	case key.Matches(msg, a.keys.Cancel):
		state, err := s.RequestClose()
		if err != nil {
			a.setError("close", err)
			return a, nil
		}
		if state == favorites.SessionDiscardConfirm {
			a.mode = ModeDiscardConfirm
			return a, nil
		}
		a.closeEdit()
		return a, nil

	case key.Matches(msg, a.keys.Save):
		a.setMessage("Saving...")
		return a, a.saveEdit(s)

	case key.Matches(msg, a.keys.SwitchFocus):
		if s.Folder().IsDefault {
			return a, nil
		}
		a.edit.ListFocus = !a.edit.ListFocus
		if a.edit.ListFocus {
			a.edit.Name.Blur()
			return a, nil
		}
		return a, a.edit.Name.Focus()
	}

	if a.edit.ListFocus {
		switch {
		case key.Matches(msg, a.keys.Down):
			if a.edit.Cursor < len(a.edit.Places)-1 {
				a.edit.Cursor++
			}
		case key.Matches(msg, a.keys.Up):
			if a.edit.Cursor > 0 {
				a.edit.Cursor--
			}
		case key.Matches(msg, a.keys.Toggle):
			if a.edit.Cursor < len(a.edit.Places) {
				if err := s.TogglePendingRemoval(a.edit.Places[a.edit.Cursor].PlaceID); err != nil {
					a.setError("mark removal", err)
				}
			}
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.edit.Name, cmd = a.edit.Name.Update(msg)
	if err := s.SetNameDraft(a.edit.Name.Value()); err != nil {
		a.setError("rename", err)
	}
	return a, cmd
}

func (a *App) closeEdit() {
	a.edit = EditState{}
	a.mode = a.returnMode
	if a.mode == ModeFolders {
		a.items = folderItems(a.folders)
	}
}

func (a App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if a.mode != ModeEdit {
		return a, nil
	}
	if errors.Is(msg.err, favorites.ErrInvalidName) || errors.Is(msg.err, favorites.ErrSessionBusy) {
		a.setError("save", msg.err)
		return a, nil
	}

	switch {
	case msg.err != nil:
		a.setError("rename", msg.err)
	case len(msg.report.Failed) > 0:
		a.message = fmt.Sprintf("Saved, %d removal(s) failed", len(msg.report.Failed))
		a.messageErr = true
	default:
		a.setMessage("Saved")
	}

	folderID := a.edit.Session.Folder().ID
	a.closeEdit()
	if a.mode == ModeContents {
		return a, tea.Batch(a.loadFolders(), a.loadPlaces(folderID, a.page))
	}
	return a, a.loadFolders()
}

func (a App) handleDiscardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.edit.Session
	switch {
	case key.Matches(msg, a.keys.Discard):
		if err := s.Discard(); err != nil {
			a.setError("discard", err)
			return a, nil
		}
		a.setMessage("Discarded changes")
		a.closeEdit()
	case key.Matches(msg, a.keys.Cancel):
		if err := s.KeepEditing(); err != nil {
			a.setError("keep editing", err)
			return a, nil
		}
		a.mode = ModeEdit
	}
	return a, nil
}

func (a App) handleDeleteRequested(msg deleteRequestedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setError("delete folder", msg.err)
		return a, a.loadFolders()
	}
	if msg.deletion.State() == favorites.DeletionNeedsChoice {
		a.deletion = msg.deletion
		a.mode = ModeDeleteChoice
		return a, nil
	}
	a.setMessage("Deleted folder")
	return a, a.loadFolders()
}

func (a App) handleDeleteChoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.DeleteAll):
		d := a.deletion
		a.mode = ModeFolders
		a.setMessage("Deleting folder contents...")
		return a, a.deleteAll(d)

	case key.Matches(msg, a.keys.KeepList), key.Matches(msg, a.keys.Cancel):
		if err := a.deletion.KeepList(); err != nil {
			a.setError("keep list", err)
		} else {
			a.setMessage("Kept folder")
		}
		a.deletion = nil
		a.mode = ModeFolders
	}
	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
