package browser

import (
	"errors"
	"testing"

	"project-browser/internal/api"
)

func TestApplyLoadDropsStaleResults(t *testing.T) {
	s := NewState()
	if !s.ApplyLoad(LoadResult{Seq: 2, Folders: []api.Project{{ID: "new"}}}) {
		t.Fatal("first result should apply")
	}
	if s.ApplyLoad(LoadResult{Seq: 1, Folders: []api.Project{{ID: "old"}}}) {
		t.Fatal("older result should be dropped")
	}
	if len(s.Folders) != 1 || s.Folders[0].ID != "new" {
		t.Fatalf("stale result overwrote list: %+v", s.Folders)
	}
}

func TestApplyLoadErrorEmptiesList(t *testing.T) {
	s := NewState()
	s.ApplyLoad(LoadResult{Seq: 1, Folders: []api.Project{{ID: "a"}}})
	s.ApplyLoad(LoadResult{Seq: 2, Err: errors.New("boom")})
	if s.Folders == nil || len(s.Folders) != 0 {
		t.Fatalf("want empty non-nil list, got %#v", s.Folders)
	}
}

func TestPatchSurnameTouchesOnlyTarget(t *testing.T) {
	s := NewState()
	orig := []api.Project{{ID: "a", Surname: "x"}, {ID: "b", Surname: "y"}}
	s.Folders = orig
	if !s.PatchSurname("b", "z") {
		t.Fatal("expected a match")
	}
	if s.Folders[0].Surname != "x" || s.Folders[1].Surname != "z" {
		t.Fatalf("unexpected folders %+v", s.Folders)
	}
	if orig[1].Surname != "y" {
		t.Fatal("patch must not write through to the previous slice")
	}
	if s.PatchSurname("missing", "q") {
		t.Fatal("unknown id should not match")
	}
}

func TestPatchSurnameNested(t *testing.T) {
	s := NewState()
	orig := []api.Project{
		{ID: "a", NestedProjects: []api.Project{
			{ID: "a1", Surname: "one"},
			{ID: "a2", NestedProjects: []api.Project{{ID: "a2x", Surname: "deep"}}},
		}},
		{ID: "b", Surname: "keep"},
	}
	s.Folders = orig

	if !s.PatchSurname("a2x", "new") {
		t.Fatal("expected nested match")
	}
	if got := s.Folders[0].NestedProjects[1].NestedProjects[0].Surname; got != "new" {
		t.Fatalf("nested surname = %q", got)
	}
	if s.Folders[0].NestedProjects[0].Surname != "one" || s.Folders[1].Surname != "keep" {
		t.Fatalf("siblings changed: %+v", s.Folders)
	}
	if orig[0].NestedProjects[1].NestedProjects[0].Surname != "deep" {
		t.Fatal("patch must not write through to the previous tree")
	}
}

func TestApplyOutcome(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		want bool
	}{
		{"delete", Outcome{Op: OpDeleteProject, Target: "a"}, true},
		{"nest", Outcome{Op: OpAddNested, Target: "a"}, true},
		{"upload", Outcome{Op: OpUpload, Target: "a"}, true},
		{"delete file", Outcome{Op: OpDeleteFile, Target: "f"}, true},
		{"rename", Outcome{Op: OpRename, Target: "a", Surname: "s"}, false},
		{"failed delete", Outcome{Op: OpDeleteProject, Target: "a", Err: errors.New("500")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.Folders = []api.Project{{ID: "a"}}
			if got := s.ApplyOutcome(tt.o); got != tt.want {
				t.Fatalf("refresh = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleMode(t *testing.T) {
	s := NewState()
	s.ToggleMode()
	if s.Mode != MatchFuzzy {
		t.Fatalf("mode = %v", s.Mode)
	}
	s.ToggleMode()
	if s.Mode != MatchSubstring {
		t.Fatalf("mode = %v", s.Mode)
	}
}
