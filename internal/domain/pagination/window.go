// Package pagination computes which page buttons a result list shows.
package pagination

const (
	// StartPage is the first page number.
	StartPage = 1
	// MaxPageDisplay is the most non-edge page buttons shown at once.
	MaxPageDisplay = 4
	// ShiftThreshold is the active page below which the window stays pinned at the start.
	ShiftThreshold = 3
)

// Window is the derived pagination state for one render.
type Window struct {
	Pages              []int `json:"pages"`
	ActivePage         int   `json:"activePage"`
	NumPages           int   `json:"numPages"`
	FrontArrowDisabled bool  `json:"frontArrowDisabled"`
	FrontJumpDisabled  bool  `json:"frontJumpDisabled"`
	BackArrowDisabled  bool  `json:"backArrowDisabled"`
	BackJumpDisabled   bool  `json:"backJumpDisabled"`
}

// Compute returns the window for activePage of numPages. The second result is
// false when there is nothing to paginate (numPages ≤ 1).
func Compute(activePage, numPages int) (Window, bool) {
	if numPages <= 1 {
		return Window{}, false
	}

	w := Window{
		ActivePage:         activePage,
		NumPages:           numPages,
		FrontArrowDisabled: activePage == StartPage,
		BackArrowDisabled:  activePage == numPages,
		FrontJumpDisabled:  activePage <= ShiftThreshold || numPages <= MaxPageDisplay,
		BackJumpDisabled:   activePage > numPages-ShiftThreshold || numPages <= MaxPageDisplay,
	}

	var start, end int
	switch {
	case numPages <= MaxPageDisplay:
		start, end = StartPage, numPages
	case activePage < ShiftThreshold:
		start, end = StartPage, MaxPageDisplay
	default:
		start = activePage - MaxPageDisplay/2
		end = activePage + MaxPageDisplay/2
		// A visible jump shortcut takes one slot on its side.
		if !w.FrontJumpDisabled {
			start++
		}
		if !w.BackJumpDisabled {
			end--
		}
		if end > numPages {
			start = numPages - ShiftThreshold
			end = numPages
		}
	}

	w.Pages = pageRange(start, end)
	return w, true
}

// ShowFrontJump reports whether the "1 …" shortcut is interactive.
func (w Window) ShowFrontJump() bool {
	return !(w.FrontJumpDisabled || w.FrontArrowDisabled)
}

// ShowBackJump reports whether the "… N" shortcut is interactive.
func (w Window) ShowBackJump() bool {
	return !(w.BackJumpDisabled || w.BackArrowDisabled)
}

// NumPagesFor returns how many pages of pageSize hold total items.
func NumPagesFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func pageRange(start, end int) []int {
	if end < start {
		return []int{}
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
