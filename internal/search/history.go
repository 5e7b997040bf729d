package search

import (
	"strings"
	"sync"
)

// History is a bounded in-memory list of recent query texts, most
// recent first. Nothing is persisted.
type History struct {
	mu      sync.Mutex
	max     int
	entries []string
}

func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

// Add records a query. Blank queries and immediate repeats of the most
// recent entry are skipped.
func (h *History) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[0] == text {
		return
	}
	h.entries = append([]string{text}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// Recent returns up to n of the latest queries, most recent first.
func (h *History) Recent(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]string, n)
	copy(out, h.entries[:n])
	return out
}

// Len reports how many entries are held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
