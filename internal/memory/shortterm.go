package memory

import "strings"

// DefaultShortTermCapacity follows Miller's 7±2.
const DefaultShortTermCapacity = 7

// ShortTerm is a fixed-capacity FIFO of the most recent memories. Adding to
// a full buffer evicts the oldest item.
type ShortTerm struct {
	buf   []*Item
	start int
	n     int
}

// NewShortTerm returns a buffer holding at most capacity items. A capacity
// below 1 falls back to the default.
func NewShortTerm(capacity int) *ShortTerm {
	if capacity < 1 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTerm{buf: make([]*Item, capacity)}
}

// Add appends an item, evicting the oldest when full.
func (s *ShortTerm) Add(item *Item) {
	c := len(s.buf)
	if s.n < c {
		s.buf[(s.start+s.n)%c] = item
		s.n++
		return
	}
	s.buf[s.start] = item
	s.start = (s.start + 1) % c
}

// Recent returns the n newest items, oldest first. n <= 0 returns all.
func (s *ShortTerm) Recent(n int) []*Item {
	all := s.items()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Search filters by kind and case-insensitive content keyword. Empty
// arguments do not filter.
func (s *ShortTerm) Search(kind Kind, keyword string) []*Item {
	return filter(s.items(), kind, keyword)
}

// Clear empties the buffer.
func (s *ShortTerm) Clear() {
	clear(s.buf)
	s.start, s.n = 0, 0
}

// Len is the number of items held.
func (s *ShortTerm) Len() int { return s.n }

// Capacity is the maximum number of items held.
func (s *ShortTerm) Capacity() int { return len(s.buf) }

func (s *ShortTerm) items() []*Item {
	out := make([]*Item, s.n)
	for i := range s.n {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

func filter(items []*Item, kind Kind, keyword string) []*Item {
	keyword = strings.ToLower(keyword)
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if kind != "" && it.Kind != kind {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(it.Content), keyword) {
			continue
		}
		out = append(out, it)
	}
	return out
}
