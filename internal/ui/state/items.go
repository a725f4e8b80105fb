package state

// Item is one selectable row of a picker level. Detail is extra text that the
// filter matches against but the picker renders in its own column.
type Item struct {
	ID     string
	Label  string
	Detail string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
