package state

// Notice is a short-lived operator message. Its text is its identity.
type Notice struct {
	Text string
}

// Notices is an ordered queue of notices. With a positive capacity it behaves
// as a ring and drops the oldest entry on overflow; zero means unbounded.
type Notices struct {
	items    []Notice
	capacity int
}

func NewNotices(capacity int) *Notices {
	if capacity < 0 {
		capacity = 0
	}
	return &Notices{capacity: capacity}
}

// Push appends a notice. Identical texts are kept as separate entries.
// It returns the number of notices dropped to honour the capacity.
func (n *Notices) Push(text string) int {
	n.items = append(n.items, Notice{Text: text})
	if n.capacity == 0 || len(n.items) <= n.capacity {
		return 0
	}
	dropped := len(n.items) - n.capacity
	n.items = append(n.items[:0:0], n.items[dropped:]...)
	return dropped
}

// Dismiss removes every notice whose text equals text and returns how many
// were removed.
func (n *Notices) Dismiss(text string) int {
	kept := n.items[:0]
	removed := 0
	for _, item := range n.items {
		if item.Text == text {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(n.items); i++ {
		n.items[i] = Notice{}
	}
	n.items = kept
	return removed
}

// Expire is the timer-driven counterpart of Dismiss.
func (n *Notices) Expire(text string) int {
	return n.Dismiss(text)
}

// All returns a copy of the queued notices, oldest first.
func (n *Notices) All() []Notice {
	if len(n.items) == 0 {
		return nil
	}
	dup := make([]Notice, len(n.items))
	copy(dup, n.items)
	return dup
}

func (n *Notices) Len() int {
	return len(n.items)
}
