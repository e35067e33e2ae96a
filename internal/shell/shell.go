// Package shell is the hosting side of the form flows. It owns which view is
// shown and receives the notification and navigation events that controllers
// emit.
package shell

import (
	"fmt"
	"sync"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

// View is one screen of the application.
type View int

const (
	// ViewHome shows the contact form.
	ViewHome View = iota
	ViewJobApplication
	ViewJobPosting
)

var viewNames = map[View]string{
	ViewHome:           "home",
	ViewJobApplication: "job-application",
	ViewJobPosting:     "job-posting",
}

func (v View) String() string {
	if s, ok := viewNames[v]; ok {
		return s
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// FormType is the form rendered by the view.
func (v View) FormType() form.Type {
	switch v {
	case ViewJobApplication:
		return form.JobApplication
	case ViewJobPosting:
		return form.JobPosting
	default:
		return form.Contact
	}
}

// ViewFor maps a form type to the view that renders it.
func ViewFor(t form.Type) View {
	switch t {
	case form.JobApplication:
		return ViewJobApplication
	case form.JobPosting:
		return ViewJobPosting
	default:
		return ViewHome
	}
}

// ParseView accepts a view name or a form type name.
func ParseView(s string) (View, error) {
	for v, name := range viewNames {
		if name == s {
			return v, nil
		}
	}
	if t, err := form.ParseType(s); err == nil {
		return ViewFor(t), nil
	}
	return ViewHome, fmt.Errorf("unknown view %q", s)
}

// Shell implements form.Events. It records every notification, forwards it to
// an optional sink and switches back to ViewHome on request.
type Shell struct {
	mu            sync.Mutex
	view          View
	notifications []form.Notification
	sink          func(form.Notification)
}

var _ form.Events = (*Shell)(nil)

// New creates a Shell showing initial. sink may be nil.
func New(initial View, sink func(form.Notification)) *Shell {
	return &Shell{view: initial, sink: sink}
}

// Show switches to v.
func (s *Shell) Show(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// View returns the current view.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Notify records n and hands it to the sink.
func (s *Shell) Notify(n form.Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink(n)
	}
}

// ReturnHome goes back to the default view.
func (s *Shell) ReturnHome() {
	s.Show(ViewHome)
}

// Notifications returns a copy of everything notified so far.
func (s *Shell) Notifications() []form.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]form.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
