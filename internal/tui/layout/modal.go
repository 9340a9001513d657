package layout

// CalculateModalWidth returns widthPercent of the terminal width, clamped to
// the configured bounds and never wider than the terminal minus a margin.
func CalculateModalWidth(terminalWidth, widthPercent int, cfg ModalConfig) int {
	width := terminalWidth * widthPercent / 100
	width = max(width, cfg.MinWidth)
	width = min(width, cfg.MaxWidth, terminalWidth-4)
	return max(width, 1)
}

// CalculateVisibleListItems returns the window [start, end) of a list of
// totalItems that keeps selectedIdx visible within maxVisible rows.
func CalculateVisibleListItems(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}
	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}
	end = min(start+maxVisible, totalItems)
	return start, end
}
