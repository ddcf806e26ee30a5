package browser

import "project-browser/internal/api"

// State is the browser's view state. The zero value is not ready for use;
// call NewState.
type State struct {
	Folders    []api.Project
	SearchTerm string
	Sort       SortOption
	Mode       FilterMode

	appliedSeq uint64
}

// NewState returns the defaults: no folders, no search, name ascending.
func NewState() State {
	return State{Folders: []api.Project{}, Sort: DefaultSort()}
}

// Visible is the displayed projection: sort(filter(Folders, SearchTerm), Sort).
func (s State) Visible() []api.Project {
	var filtered []api.Project
	if s.Mode == MatchFuzzy {
		filtered = FuzzyFilter(s.Folders, s.SearchTerm)
	} else {
		filtered = Filter(s.Folders, s.SearchTerm)
	}
	return Sort(filtered, s.Sort)
}

// SetSearch replaces the search term.
func (s *State) SetSearch(term string) { s.SearchTerm = term }

// SortBy applies the sort toggle rule for field.
func (s *State) SortBy(field SortField) { s.Sort = s.Sort.Toggle(field) }

// ToggleMode switches between substring and fuzzy matching.
func (s *State) ToggleMode() {
	if s.Mode == MatchFuzzy {
		s.Mode = MatchSubstring
	} else {
		s.Mode = MatchFuzzy
	}
}

// ApplyLoad installs a load result. Results older than one already applied
// are dropped and false is returned. A failed load empties the list.
func (s *State) ApplyLoad(r LoadResult) bool {
	if r.Seq < s.appliedSeq {
		return false
	}
	s.appliedSeq = r.Seq
	if r.Err != nil || r.Folders == nil {
		s.Folders = []api.Project{}
		return true
	}
	s.Folders = r.Folders
	return true
}

// PatchSurname sets the surname of the loaded project with id, at any
// nesting depth, leaving every other entry untouched. Slices along the path
// to the match are copied, never written through. It reports whether an
// entry matched.
func (s *State) PatchSurname(id, surname string) bool {
	patched, ok := patchSurname(s.Folders, id, surname)
	if ok {
		s.Folders = patched
	}
	return ok
}

func patchSurname(list []api.Project, id, surname string) ([]api.Project, bool) {
	for i := range list {
		if list[i].ID == id {
			out := append([]api.Project(nil), list...)
			out[i].Surname = surname
			return out, true
		}
		if children, ok := patchSurname(list[i].NestedProjects, id, surname); ok {
			out := append([]api.Project(nil), list...)
			out[i].NestedProjects = children
			return out, true
		}
	}
	return list, false
}

// ApplyOutcome folds a mutation result into the state and reports whether
// the caller must reload the list.
func (s *State) ApplyOutcome(o Outcome) (refresh bool) {
	if o.Err != nil {
		return false
	}
	if o.Op == OpRename {
		s.PatchSurname(o.Target, o.Surname)
		return false
	}
	return true
}
