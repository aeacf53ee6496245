package search

// Keys understood by KeyDown. Values match the DOM KeyboardEvent.key names.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// DefaultLimit is the number of dropdown entries rendered at most.
const DefaultLimit = 10

// NoHighlight marks a dropdown without a highlighted entry.
const NoHighlight = -1

// State is the controller's view of the widget.
type State struct {
	// Text is the content of the input field.
	Text string
	// Matches holds every option matching Text when the dropdown was last
	// filled.
	Matches []Option
	// Visible is the rendered prefix of Matches. Navigation never leaves it.
	Visible []Option
	// Highlight indexes Visible, or is NoHighlight.
	Highlight int
	// Focused tracks whether the input owns focus.
	Focused bool
}

// Open reports whether the dropdown is shown.
func (s State) Open() bool { return len(s.Visible) > 0 }

// Highlighted returns the highlighted option, if any.
func (s State) Highlighted() (Option, bool) {
	if s.Highlight < 0 || s.Highlight >= len(s.Visible) {
		return Option{}, false
	}
	return s.Visible[s.Highlight], true
}

// show fills the dropdown with matches, capped at limit, and clears the
// highlight. An empty list hides the dropdown.
func (s State) show(matches []Option, limit int) State {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.Matches = matches
	s.Visible = matches
	if len(s.Visible) > limit {
		s.Visible = s.Visible[:limit]
	}
	s.Highlight = NoHighlight
	return s
}

// hide empties the dropdown.
func (s State) hide() State {
	s.Matches = nil
	s.Visible = nil
	s.Highlight = NoHighlight
	return s
}

// move shifts the highlight by step with wraparound. Without a current
// highlight the first entry is highlighted whatever the direction.
func (s State) move(step int) State {
	n := len(s.Visible)
	if n == 0 {
		return s
	}
	if s.Highlight < 0 || s.Highlight >= n {
		s.Highlight = 0
		return s
	}
	s.Highlight = ((s.Highlight+step)%n + n) % n
	return s
}

// clone copies the slices so callers cannot alias controller state.
func (s State) clone() State {
	s.Matches = append([]Option(nil), s.Matches...)
	s.Visible = append([]Option(nil), s.Visible...)
	return s
}
