package engine

import (
	"github.com/gdamore/tcell/v2"

	"github.com/veyra/abyss/parameter"
)

// Action is an input outcome the frame loop must act on itself
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNextDataset
	ActionPrevDataset
)

// HandleKey applies a key event to the viewer state. Camera and path
// mutations happen in place; dataset switching and quit bubble up as
// actions because they need work outside the context
func HandleKey(v *ViewerContext, ev *tcell.EventKey) Action {
	step := parameter.PanStepPixels

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyLeft:
		v.Pan(step, 0)
	case tcell.KeyRight:
		v.Pan(-step, 0)
	case tcell.KeyUp:
		v.Pan(0, step)
	case tcell.KeyDown:
		v.Pan(0, -step)

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return ActionQuit

		// Vim-style pan: drag the world under the view
		case 'h':
			v.Pan(step, 0)
		case 'l':
			v.Pan(-step, 0)
		case 'k':
			v.Pan(0, step)
		case 'j':
			v.Pan(0, -step)

		case '+', '=':
			v.Zoom(parameter.ZoomStep)
		case '-', '_':
			v.Zoom(-parameter.ZoomStep)

		case 'r':
			v.Rotate(parameter.RotateStep)
		case 'R':
			v.Rotate(-parameter.RotateStep)

		case ' ':
			v.TogglePlayback()
		case 'n':
			v.JumpKeyframe(1)
		case 'p':
			v.JumpKeyframe(-1)
		case 'i':
			v.InsertKeyframe()
		case 'x':
			v.DeleteKeyframe()
		case 'c':
			v.ExportPath()

		case ']':
			return ActionNextDataset
		case '[':
			return ActionPrevDataset
		}
	}
	return ActionNone
}
