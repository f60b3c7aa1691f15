// Package nav tracks the current page and the pages to go back to.
package nav

import (
	"strings"
	"sync"
)

// Page identifies a screen of the client.
type Page string

const (
	Login                Page = "login"
	Landing              Page = "landing"
	Upload               Page = "upload"
	Results              Page = "results"
	History              Page = "history"
	AdminDashboard       Page = "admin-dashboard"
	InstitutionDashboard Page = "institution-dashboard"
)

// Pages lists every known page.
var Pages = []Page{Login, Landing, Upload, Results, History, AdminDashboard, InstitutionDashboard}

// ParsePage returns the page named s.
func ParsePage(s string) (Page, bool) {
	for _, p := range Pages {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// IsDashboard reports whether entering p loads dashboard data.
func (p Page) IsDashboard() bool {
	return strings.Contains(string(p), "dashboard")
}

// Transition describes one change of the current page.
type Transition struct {
	From Page
	To   Page
	Back bool
}

// Stack is the current page plus a push-down history of earlier pages.
// It is safe for concurrent use.
type Stack struct {
	mu      sync.Mutex
	current Page
	history []Page
}

// New returns a stack positioned at start with no history.
func New(start Page) *Stack {
	return &Stack{current: start}
}

// Current returns the current page.
func (s *Stack) Current() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// History returns a copy of the back history, oldest first.
func (s *Stack) History() []Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Page(nil), s.history...)
}

// Depth returns the number of pages Back can return to.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// GoTo makes page current. Unless back is set, the previous page is pushed
// when it differs from page.
func (s *Stack) GoTo(page Page, back bool) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goTo(page, back)
}

func (s *Stack) goTo(page Page, back bool) Transition {
	t := Transition{From: s.current, To: page, Back: back}
	if !back && page != s.current {
		s.history = append(s.history, s.current)
	}
	s.current = page
	return t
}

// Back pops the most recent page and makes it current. With an empty history
// it does nothing and reports false.
func (s *Stack) Back() (Transition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.history)
	if n == 0 {
		return Transition{}, false
	}
	prev := s.history[n-1]
	s.history = s.history[:n-1]
	return s.goTo(prev, true), true
}

// Reset drops the history and makes page current.
func (s *Stack) Reset(page Page) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	t := Transition{From: s.current, To: page}
	s.current = page
	return t
}

// CanGoBack reports whether a back control should be offered: there is
// history and the current page is not the landing page.
func (s *Stack) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 0 && s.current != Landing
}
