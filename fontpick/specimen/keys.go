package specimen

// Action is what a key press asks the navigator to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrevious
)

// KeyAction maps a KeyboardEvent code to an Action. Keys typed into a
// text field are left alone.
func KeyAction(code, targetTag string, editable bool) Action {
	if editable || targetTag == "INPUT" || targetTag == "TEXTAREA" {
		return ActionNone
	}
	switch code {
	case "Space", "ArrowRight":
		return ActionNext
	case "ArrowLeft":
		return ActionPrevious
	}
	return ActionNone
}
