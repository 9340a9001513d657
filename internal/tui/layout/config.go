package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds list pane dimensions.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for list rows.
	// Accounts for: app padding (1) + title (1) + pane borders (2) + message (1) + help bar (3) = 8
	HeightReduction int
	MinHeight       int
	// ContentPadding is subtracted from terminal width for row rendering.
	ContentPadding int
}

// ModalConfig holds dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int
	MinWidth     int
	MaxWidth     int
	// MaxVisible caps the rows shown in the edit dialog's place list.
	MaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit int
	Width         int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction: 8,
			MinHeight:       3,
			ContentPadding:  8,
		},
		Modal: ModalConfig{
			WidthPercent: 50,
			MinWidth:     40,
			MaxWidth:     80,
			MaxVisible:   8,
		},
		Input: InputConfig{
			NameCharLimit: 100,
			Width:         40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
