package viewport

// History records the pages left by explicit navigation so the view can go
// back and forward between them. Like Scheduler it belongs to a single
// goroutine.
type History struct {
	back    []int
	forward []int
}

// Visit records a jump away from page. A new jump discards the forward
// stack.
func (h *History) Visit(page int) {
	if n := len(h.back); n > 0 && h.back[n-1] == page {
		h.forward = h.forward[:0]
		return
	}
	h.back = append(h.back, page)
	h.forward = h.forward[:0]
}

// Back pops the most recent page, pushing current onto the forward stack
func (h *History) Back(current int) (int, bool) {
	n := len(h.back)
	if n == 0 {
		return 0, false
	}
	page := h.back[n-1]
	h.back = h.back[:n-1]
	h.forward = append(h.forward, current)
	return page, true
}

// Forward undoes the last Back, pushing current onto the back stack
func (h *History) Forward(current int) (int, bool) {
	n := len(h.forward)
	if n == 0 {
		return 0, false
	}
	page := h.forward[n-1]
	h.forward = h.forward[:n-1]
	h.back = append(h.back, current)
	return page, true
}

// CanGoBack reports whether Back has a page to return
func (h *History) CanGoBack() bool { return len(h.back) > 0 }

// CanGoForward reports whether Forward has a page to return
func (h *History) CanGoForward() bool { return len(h.forward) > 0 }
