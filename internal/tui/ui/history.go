package ui

// maxHistory bounds the command history.
const maxHistory = 50

// History is a bounded list of submitted commands with a browse cursor.
// The cursor position len(entries) stands for the empty line below the
// newest entry.
type History struct {
	entries []string
	cursor  int
	limit   int
}

func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add records text unless it repeats the newest entry, and rewinds.
func (h *History) Add(text string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != text {
		h.entries = append(h.entries, text)
		if over := len(h.entries) - h.limit; h.limit > 0 && over > 0 {
			h.entries = h.entries[over:]
		}
	}
	h.Rewind()
}

// Rewind parks the cursor below the newest entry.
func (h *History) Rewind() {
	h.cursor = len(h.entries)
}

// Prev moves towards older entries and stops at the oldest one.
func (h *History) Prev() string {
	if h.cursor > 0 {
		h.cursor--
	}
	return h.current()
}

// Next moves towards newer entries. Past the newest it returns "".
func (h *History) Next() string {
	if h.cursor < len(h.entries) {
		h.cursor++
	}
	return h.current()
}

func (h *History) current() string {
	if h.cursor >= len(h.entries) {
		return ""
	}
	return h.entries[h.cursor]
}

// Len returns the number of remembered entries.
func (h *History) Len() int {
	return len(h.entries)
}
