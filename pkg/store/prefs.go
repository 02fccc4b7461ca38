package store

import (
	"fmt"
	"sync"
)

// MaxGroup is the highest exercise-group number the filter can select.
const MaxGroup = 3

// Prefs keeps per-user display preferences for the lifetime of the
// process. Losing them on restart is accepted; the schedule file and
// the source URL are the only persisted artifacts. Instances are meant
// to be injected, not shared through package state.
type Prefs struct {
	mu            sync.Mutex
	groups        map[int64]int
	notifications map[int64]bool
}

func NewPrefs() *Prefs {
	return &Prefs{
		groups:        make(map[int64]int),
		notifications: make(map[int64]bool),
	}
}

// Group returns the user's group filter; 0 means "show everything".
func (p *Prefs) Group(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups[userID]
}

// SetGroup sets the group filter to a concrete value.
func (p *Prefs) SetGroup(userID int64, group int) error {
	if group < 0 || group > MaxGroup {
		return fmt.Errorf("group filter must be between 0 and %d, got %d", MaxGroup, group)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups[userID] = group
	return nil
}

// CycleGroup advances the filter 0→1→2→3→0 and returns the new value.
func (p *Prefs) CycleGroup(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := (p.groups[userID] + 1) % (MaxGroup + 1)
	p.groups[userID] = next
	return next
}

// Notifications reports whether the user wants update reminders.
func (p *Prefs) Notifications(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifications[userID]
}

// ToggleNotifications flips the reminder flag and returns the new value.
func (p *Prefs) ToggleNotifications(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.notifications[userID] = !p.notifications[userID]
	return p.notifications[userID]
}
