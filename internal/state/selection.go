package state

// Selection is the operator's sticky choice of source, held by display name
// and resolved against the registry on every read.
type Selection struct {
	name string
	set  bool
}

// Select binds the selection to name whether or not it currently resolves.
func (s *Selection) Select(name string) {
	s.name = name
	s.set = true
}

// Clear returns the selection to the unselected state.
func (s *Selection) Clear() {
	s.name = ""
	s.set = false
}

func (s *Selection) Name() string {
	return s.name
}

func (s *Selection) IsSet() bool {
	return s.set
}

// Resolve looks the selected name up in reg. It reports false when nothing is
// selected or no source currently carries the name.
func (s *Selection) Resolve(reg *Registry) (Source, bool) {
	if !s.set || reg == nil {
		return Source{}, false
	}
	return reg.FindByName(s.name)
}
