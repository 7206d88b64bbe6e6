package form

// KeyEnter is the key name that advances focus.
const KeyEnter = "Enter"

// Navigator moves focus between form controls in document order.
type Navigator struct {
	controls []string
}

func NewNavigator(controls []string) *Navigator {
	return &Navigator{controls: controls}
}

func (n *Navigator) Len() int {
	return len(n.controls)
}

func (n *Navigator) Control(i int) string {
	if i < 0 || i >= len(n.controls) {
		return ""
	}
	return n.controls[i]
}

// Next returns the index after i, or i and false at the last control.
func (n *Navigator) Next(i int) (int, bool) {
	if i+1 < len(n.controls) {
		return i + 1, true
	}
	return i, false
}

// HandleKey processes a key press on control i. Enter is always consumed
// (the form is never submitted) and focus moves if a next control exists.
// Other keys leave focus alone and are not consumed.
func (n *Navigator) HandleKey(i int, key string) (focus int, consumed bool) {
	if key != KeyEnter {
		return i, false
	}
	next, _ := n.Next(i)
	return next, true
}
