package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	Modal        lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Folder       lipgloss.Style
	Place        lipgloss.Style
	Address      lipgloss.Style
	Count        lipgloss.Style
	Pending      lipgloss.Style
	Message      lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}
	danger := lipgloss.AdaptiveColor{Light: "#8A4A4A", Dark: "#AF6F6F"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Folder:  lipgloss.NewStyle().Foreground(primary),
		Place:   lipgloss.NewStyle().Foreground(primary),
		Address: lipgloss.NewStyle().Foreground(subtle),
		Count:   lipgloss.NewStyle().Foreground(subtle),
		Pending: lipgloss.NewStyle().Foreground(danger).Strikethrough(true),
		Message: lipgloss.NewStyle().Foreground(accent),
		Error:   lipgloss.NewStyle().Foreground(danger),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(1, 0),

		Empty:    lipgloss.NewStyle().Foreground(subtle),
		HintKey:  lipgloss.NewStyle().Foreground(subtle),
		HintDesc: lipgloss.NewStyle().Foreground(subtle),
	}
}
