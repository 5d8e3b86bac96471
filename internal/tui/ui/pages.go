package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages. Pages are
// registered once with Add and then pushed by name.
type Pages struct {
	*tview.Pages
	stack      []string
	components map[string]Component
	onChange   func(top Component, stack []string)
}

// NewPages creates a new stack-based page manager.
func NewPages() *Pages {
	return &Pages{
		Pages:      tview.NewPages(),
		components: make(map[string]Component),
	}
}

// Add registers a page. The primitive is what gets drawn; c supplies its
// label and hints.
func (p *Pages) Add(name string, item tview.Primitive, c Component) {
	p.components[name] = c
	p.AddPage(name, item, true, false)
}

// SetOnChange sets a callback that fires when the stack changes. stack
// holds the breadcrumb labels.
func (p *Pages) SetOnChange(fn func(top Component, stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current page again only
// refreshes it.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		p.Refresh()
		return
	}
	if len(p.stack) > 0 {
		p.HidePage(p.stack[len(p.stack)-1])
	}
	p.stack = append(p.stack, name)
	p.show(name)
}

// Pop removes the top page and shows the previous one. The root page is
// never popped. Returns the name of the popped page, or empty.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.stack[len(p.stack)-1])
	return top
}

// Current returns the name of the current (top) page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Top returns the component of the current page.
func (p *Pages) Top() Component {
	return p.components[p.Current()]
}

// Reset clears the stack and shows only the given page.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
}

// Contains reports whether name is anywhere on the stack.
func (p *Pages) Contains(name string) bool {
	for _, n := range p.stack {
		if n == name {
			return true
		}
	}
	return false
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	p.Refresh()
}

// Refresh re-renders the top page and fires the change callback.
func (p *Pages) Refresh() {
	if c := p.Top(); c != nil {
		c.Refresh()
	}
	if p.onChange == nil {
		return
	}
	labels := make([]string, 0, len(p.stack))
	for _, n := range p.stack {
		if c, ok := p.components[n]; ok {
			labels = append(labels, c.Name())
		} else {
			labels = append(labels, n)
		}
	}
	p.onChange(p.Top(), labels)
}
