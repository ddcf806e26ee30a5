package browser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"project-browser/internal/api"
)

// SortField names the key folders are ordered by.
type SortField string

const (
	SortByName SortField = "name"
	SortByDate SortField = "date"
)

// ParseSortField accepts "name" or "date", ignoring case and surrounding space.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByName, SortByDate:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want %s or %s)", s, SortByName, SortByDate)
}

// SortOption is the current ordering.
type SortOption struct {
	Field     SortField
	Ascending bool
}

// DefaultSort orders by name, ascending.
func DefaultSort() SortOption { return SortOption{Field: SortByName, Ascending: true} }

// Toggle returns the option after the user picks field: the active field
// flips direction, a new field starts ascending.
func (o SortOption) Toggle(field SortField) SortOption {
	if o.Field == field {
		return SortOption{Field: field, Ascending: !o.Ascending}
	}
	return SortOption{Field: field, Ascending: true}
}

func (o SortOption) String() string {
	dir := "asc"
	if !o.Ascending {
		dir = "desc"
	}
	return string(o.Field) + " " + dir
}

// FilterMode selects how the search term is matched against names.
type FilterMode int

const (
	MatchSubstring FilterMode = iota
	MatchFuzzy
)

func (m FilterMode) String() string {
	if m == MatchFuzzy {
		return "fuzzy"
	}
	return "substring"
}

// Filter keeps folders whose name contains term, ignoring case. An empty
// term keeps everything. The input is not modified.
func Filter(folders []api.Project, term string) []api.Project {
	out := make([]api.Project, 0, len(folders))
	needle := strings.ToLower(term)
	for _, f := range folders {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			out = append(out, f)
		}
	}
	return out
}

// FuzzyFilter keeps folders whose name fuzzily matches term, in input order.
func FuzzyFilter(folders []api.Project, term string) []api.Project {
	if term == "" {
		return append(make([]api.Project, 0, len(folders)), folders...)
	}
	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	matches := fuzzy.Find(term, names)
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)
	out := make([]api.Project, 0, len(idx))
	for _, i := range idx {
		out = append(out, folders[i])
	}
	return out
}

// Sort returns a copy of folders ordered by opt. Names and status dates are
// compared with a language-neutral collator; equal keys keep their order.
func Sort(folders []api.Project, opt SortOption) []api.Project {
	out := append(make([]api.Project, 0, len(folders)), folders...)
	key := func(p api.Project) string { return p.Name }
	switch opt.Field {
	case SortByName:
	case SortByDate:
		key = func(p api.Project) string { return p.LatestStatusUpdate }
	default:
		return out
	}
	col := collate.New(language.Und)
	order := 1
	if !opt.Ascending {
		order = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(key(out[i]), key(out[j]))*order < 0
	})
	return out
}
