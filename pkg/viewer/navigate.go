package viewer

import (
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// GoToPage jumps to a 1-based page and records the page left in the
// navigation history
func (s *Session) GoToPage(page int) error {
	var err error
	callErr := s.call(func() {
		if err = pdf.CheckIndex(page-1, s.sched.Len()); err != nil {
			return
		}
		s.jump(page-1, true)
	})
	if callErr != nil {
		return callErr
	}
	return err
}

// NextPage moves one page forward; it does nothing on the last page
func (s *Session) NextPage() error {
	return s.call(func() {
		if next := s.sched.Current() + 1; next < s.sched.Len() {
			s.jump(next, true)
		}
	})
}

// PreviousPage moves one page back; it does nothing on the first page
func (s *Session) PreviousPage() error {
	return s.call(func() {
		if prev := s.sched.Current() - 1; prev >= 0 {
			s.jump(prev, true)
		}
	})
}

// FirstPage jumps to the first page
func (s *Session) FirstPage() error {
	return s.call(func() {
		if s.sched.Len() > 0 {
			s.jump(0, true)
		}
	})
}

// LastPage jumps to the last page
func (s *Session) LastPage() error {
	return s.call(func() {
		if n := s.sched.Len(); n > 0 {
			s.jump(n-1, true)
		}
	})
}

// GoBack returns to the page left by the last jump
func (s *Session) GoBack() error {
	return s.call(func() {
		if page, ok := s.history.Back(s.sched.Current()); ok {
			s.jump(page, false)
		}
	})
}

// GoForward undoes the last GoBack
func (s *Session) GoForward() error {
	return s.call(func() {
		if page, ok := s.history.Forward(s.sched.Current()); ok {
			s.jump(page, false)
		}
	})
}

// jump makes page current, keeping the size of the visible range, and asks
// the view to scroll there
func (s *Session) jump(page int, record bool) {
	current := s.sched.Current()
	if page == current {
		return
	}
	if record {
		s.history.Visit(current)
	}

	span := max(s.last-s.first, 0)
	s.first = page
	s.last = min(page+span, s.sched.Len()-1)
	s.sched.SetVisible(s.first, s.last)
	s.thumbs.Select(page)
	if s.results.Len() > 0 {
		s.emitSearch()
	}
	s.loadWindow()

	s.logger.Debug("navigated", observability.Int("from", current), observability.Int("to", page))
	s.emit(NavigateEvent{Page: page})
}

// Outline returns the document bookmarks, nil when the document has none
func (s *Session) Outline() ([]pdf.OutlineItem, error) {
	if s.closed() {
		return nil, ErrClosed
	}
	md, ok := s.doc.(pdf.Metadata)
	if !ok {
		return nil, nil
	}
	items, err := md.Outline()
	if err != nil {
		s.logger.Warn("outline unavailable", observability.Err(err))
		return nil, err
	}
	return items, nil
}

// Properties returns the document information. Documents without an
// information dictionary report only their page count.
func (s *Session) Properties() (pdf.Properties, error) {
	if s.closed() {
		return pdf.Properties{}, ErrClosed
	}
	if md, ok := s.doc.(pdf.Metadata); ok {
		return md.Properties()
	}
	return pdf.Properties{PageCount: s.PageCount()}, nil
}
