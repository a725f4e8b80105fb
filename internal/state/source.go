package state

// Source is one remote camera as last reported by the hub.
type Source struct {
	ID      string
	Name    string
	Picture string
}

// HasPicture reports whether the source has published any image payload.
func (s Source) HasPicture() bool {
	return s.Picture != ""
}

// Registry holds the known sources keyed by id. Its membership is replaced
// wholesale by every snapshot; nothing else mutates it.
type Registry struct {
	order []string
	byID  map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]Source{}}
}

// ApplySnapshot replaces the registry contents with entries, keeping their
// order. A repeated id keeps its first position and its last value.
func (r *Registry) ApplySnapshot(entries []Source) {
	order := make([]string, 0, len(entries))
	byID := make(map[string]Source, len(entries))
	for _, entry := range entries {
		if _, seen := byID[entry.ID]; !seen {
			order = append(order, entry.ID)
		}
		byID[entry.ID] = entry
	}
	r.order = order
	r.byID = byID
}

// Get returns the source with the given id.
func (r *Registry) Get(id string) (Source, bool) {
	src, ok := r.byID[id]
	return src, ok
}

// FindByName returns the first source, in registry order, whose name matches.
func (r *Registry) FindByName(name string) (Source, bool) {
	for _, id := range r.order {
		if src := r.byID[id]; src.Name == name {
			return src, true
		}
	}
	return Source{}, false
}

// All returns the sources in the order of the last applied snapshot.
func (r *Registry) All() []Source {
	if len(r.order) == 0 {
		return nil
	}
	out := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
