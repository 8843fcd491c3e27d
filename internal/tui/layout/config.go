package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds binder pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for tree rows.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status (1) + help bar (2) = 7
	HeightReduction int

	// MinHeight is the minimum number of tree rows.
	MinHeight int

	// ContentPadding is subtracted from terminal width for row rendering.
	// Accounts for app padding and pane border/padding on each side.
	ContentPadding int

	// IndentWidth is the number of spaces per tree level.
	IndentWidth int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit int
	StandardWidth  int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction: 7,
			MinHeight:       5,
			ContentPadding:  8,
			IndentWidth:     2,
		},
		Modal: ModalConfig{
			WidthPercent: 40,
			MinWidth:     40,
			MaxWidth:     80,
		},
		Input: InputConfig{
			TitleCharLimit: 120,
			StandardWidth:  40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
