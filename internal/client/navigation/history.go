// Package navigation tracks where the terminal client currently is, the way
// a browser history does for the web front-end.
package navigation

import "sync"

// Navigator moves the client to another path. With replace the current entry
// is overwritten instead of a new one being pushed, so going back skips it.
type Navigator interface {
	Navigate(path string, replace bool)
	Current() string
}

// History is a Navigator backed by a stack of paths. Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []string
	onMove  func(path string)
}

var _ Navigator = (*History)(nil)

// NewHistory starts at path. onMove, when not nil, is called after every
// move with the new current path.
func NewHistory(path string, onMove func(path string)) *History {
	return &History{entries: []string{path}, onMove: onMove}
}

func (h *History) Navigate(path string, replace bool) {
	h.mu.Lock()
	if replace && len(h.entries) > 0 {
		h.entries[len(h.entries)-1] = path
	} else {
		h.entries = append(h.entries, path)
	}
	h.mu.Unlock()

	if h.onMove != nil {
		h.onMove(path)
	}
}

func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Back drops the current entry and returns the previous one. The first entry
// is never dropped; ok is false when there is nowhere to go back to.
func (h *History) Back() (path string, ok bool) {
	h.mu.Lock()
	if len(h.entries) < 2 {
		cur := ""
		if len(h.entries) == 1 {
			cur = h.entries[0]
		}
		h.mu.Unlock()
		return cur, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	path = h.entries[len(h.entries)-1]
	h.mu.Unlock()

	if h.onMove != nil {
		h.onMove(path)
	}
	return path, true
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.entries...)
}
