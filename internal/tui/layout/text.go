package layout

import "github.com/charmbracelet/x/ansi"

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// TruncateText shortens text to maxWidth cells, ending in the ellipsis.
// It reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if ansi.StringWidth(cfg.Ellipsis) >= maxWidth {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix shortens only text so that prefix+text+suffix fits
// in maxWidth. Example: ("Weekend Trips", 12, "> ", " (3)") gives "> Wee... (3)".
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	combined := prefix + text + suffix
	if ansi.StringWidth(combined) <= maxWidth {
		return combined, false
	}
	avail := maxWidth - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	if avail <= ansi.StringWidth(cfg.Ellipsis) {
		return TruncateText(combined, maxWidth, cfg)
	}
	short, _ := TruncateText(text, avail, cfg)
	return prefix + short + suffix, true
}
