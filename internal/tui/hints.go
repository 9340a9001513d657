package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Hint is a single key hint for display.
type Hint struct {
	Key  string
	Desc string
}

func hintFor(b key.Binding) Hint {
	h := b.Help()
	return Hint{Key: h.Key, Desc: h.Desc}
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Action []Hint
	System []Hint
}

// All returns the hints in display order: Nav + Action + System.
func (h HintSet) All() []Hint {
	out := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.System))
	out = append(out, h.Nav...)
	out = append(out, h.Action...)
	return append(out, h.System...)
}

// renderHints renders hints for the bottom bar: "j/k:move h:back l:open".
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// contextualHints returns the hints for the current mode.
func (a App) contextualHints() HintSet {
	k := a.keys
	switch a.mode {
	case ModeFolders:
		if a.loggedOut {
			return HintSet{System: []Hint{hintFor(k.Refresh), hintFor(k.Quit)}}
		}
		return HintSet{
			Nav:    []Hint{hintFor(k.Down), hintFor(k.Open)},
			Action: []Hint{hintFor(k.Create), hintFor(k.Edit), hintFor(k.Delete)},
			System: []Hint{hintFor(k.Refresh), hintFor(k.Quit)},
		}
	case ModeContents:
		return HintSet{
			Nav:    []Hint{hintFor(k.Down), hintFor(k.Back), hintFor(k.NextPage)},
			Action: []Hint{hintFor(k.Edit), hintFor(k.Yank)},
			System: []Hint{hintFor(k.Refresh), hintFor(k.Quit)},
		}
	case ModeCreateFolder:
		return HintSet{System: []Hint{{Key: "Enter", Desc: "create"}, hintFor(k.Cancel)}}
	case ModeEdit:
		set := HintSet{
			Action: []Hint{hintFor(k.Save)},
			System: []Hint{hintFor(k.Cancel)},
		}
		if a.edit.ListFocus {
			set.Nav = []Hint{hintFor(k.Down), hintFor(k.Toggle)}
		}
		if a.edit.Session != nil && !a.edit.Session.Folder().IsDefault {
			set.Nav = append(set.Nav, hintFor(k.SwitchFocus))
		}
		return set
	case ModeDiscardConfirm:
		return HintSet{Action: []Hint{hintFor(k.Discard), {Key: "Esc", Desc: "keep editing"}}}
	case ModeDeleteChoice:
		return HintSet{Action: []Hint{hintFor(k.KeepList), hintFor(k.DeleteAll)}}
	}
	return HintSet{}
}
