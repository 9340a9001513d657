package layout

// CalculatePaneHeight returns the number of list rows that fit, at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	return max(terminalHeight-cfg.HeightReduction, cfg.MinHeight)
}

// CalculateItemWidth returns the width available for a row.
func CalculateItemWidth(terminalWidth int, cfg PaneConfig) int {
	return max(terminalWidth-cfg.ContentPadding, 1)
}

// CalculateViewportOffset returns the scroll offset that keeps selected
// roughly centered in a viewport of viewportHeight rows.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}
	offset := selected - viewportHeight/2
	return min(max(offset, 0), total-viewportHeight)
}
