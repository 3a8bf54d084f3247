package app

import "github.com/ayusman/landmarkcam/internal/overlay"

// Action is what a key press asks the loop to do.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// ParseKey maps a polled key code to an Action. Only the low byte of the
// code is significant; -1 means no key was pressed.
func ParseKey(key int) Action {
	if key < 0 {
		return ActionNone
	}
	switch key & 0xFF {
	case 'q', 'Q':
		return ActionQuit
	case 'l', 'L':
		return ActionToggle
	default:
		return ActionNone
	}
}

// State is the loop state carried from one frame to the next.
type State struct {
	ShowLandmarks bool
}

// InitialState returns the state of a fresh run: overlay on.
func InitialState() State {
	return State{ShowLandmarks: true}
}

// Apply returns the state after action. Quit leaves the state unchanged.
func (s State) Apply(action Action) State {
	if action == ActionToggle {
		s.ShowLandmarks = !s.ShowLandmarks
	}
	return s
}

// HUDText returns the status line for s.
func (s State) HUDText() string {
	return overlay.HUDText(s.ShowLandmarks)
}
