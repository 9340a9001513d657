// Package picker is a small bubbletea list for choosing one search result.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/favs/internal/model"
	"github.com/nikbrunner/favs/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

type keyMap struct {
	up, down, choose, cancel key.Binding
}

var keys = keyMap{
	up:     key.NewBinding(key.WithKeys("k", "up", "ctrl+p")),
	down:   key.NewBinding(key.WithKeys("j", "down", "ctrl+n")),
	choose: key.NewBinding(key.WithKeys("enter")),
	cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// Params holds parameters for New.
type Params struct {
	Results []search.SearchResult
	Query   string
	// FolderName labels a result's folder. Optional.
	FolderName func(folderID string) string
}

// Picker lets the user choose one saved place from search results.
type Picker struct {
	results    []search.SearchResult
	query      string
	folderName func(string) string
	cursor     int
	selected   bool
	cancelled  bool
	width      int
	height     int
}

// New creates a Picker over the given results.
func New(p Params) Picker {
	return Picker{
		results:    p.Results,
		query:      p.Query,
		folderName: p.FolderName,
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.choose):
			if len(p.results) > 0 {
				p.selected = true
				return p, tea.Quit
			}
		case key.Matches(msg, keys.down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Find: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	for i, r := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, style.Render(r.Favorite.Place.Name))
		if detail := p.detail(r.Favorite); detail != "" {
			fmt.Fprintf(&b, "   %s\n", detailStyle.Render(detail))
		}
	}

	b.WriteString("\n")
	b.WriteString(detailStyle.Render("j/k: move  Enter: choose  q/Esc: cancel"))
	return b.String()
}

func (p Picker) detail(f model.Favorite) string {
	var parts []string
	if f.Place.Address != "" {
		parts = append(parts, f.Place.Address)
	}
	if p.folderName != nil {
		if name := p.folderName(f.FolderKey()); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " · ")
}

// Selected returns the chosen favorite, or nil if the picker was cancelled.
func (p Picker) Selected() *model.Favorite {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return nil
	}
	f := p.results[p.cursor].Favorite
	return &f
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
