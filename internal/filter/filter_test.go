package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"samina/internal/types"
)

func fixturePosts() []types.Post {
	return []types.Post{
		{ID: "p1", Title: "Quantum Brushwork", Excerpt: "Where physics meets the canvas...", Category: types.CategoryArt},
		{ID: "p2", Title: "Deep Sea Vents", Excerpt: "Life without sunlight...", Category: types.CategoryScience},
		{ID: "p3", Title: "Street Murals of Lisbon", Excerpt: "A walking tour...", Category: types.CategoryArt},
		{ID: "p4", Title: "Quantum Computing Today", Excerpt: "The state of the field...", Category: types.CategoryScience},
	}
}

func TestVisible_NoFilters(t *testing.T) {
	posts := fixturePosts()
	got := Visible(posts, CategoryAll, "")
	if diff := cmp.Diff(posts, got); diff != "" {
		t.Errorf("unfiltered list mismatch (-want +got):\n%s", diff)
	}
}

func TestVisible_CategoryOnly(t *testing.T) {
	got := Visible(fixturePosts(), types.CategoryArt, "")
	want := []string{"p1", "p3"}
	assertIDs(t, want, got)
}

func TestVisible_QueryOnly(t *testing.T) {
	got := Visible(fixturePosts(), CategoryAll, "quantum")
	assertIDs(t, []string{"p1", "p4"}, got)
}

func TestVisible_Conjunctive(t *testing.T) {
	got := Visible(fixturePosts(), types.CategoryScience, "quantum")
	assertIDs(t, []string{"p4"}, got)
}

func TestVisible_CaseInsensitive(t *testing.T) {
	got := Visible(fixturePosts(), CategoryAll, "QUANTUM")
	assertIDs(t, []string{"p1", "p4"}, got)
}

func TestVisible_MatchesExcerpt(t *testing.T) {
	got := Visible(fixturePosts(), CategoryAll, "sunlight")
	assertIDs(t, []string{"p2"}, got)
}

func TestVisible_PreservesOrder(t *testing.T) {
	posts := fixturePosts()
	got := Visible(posts, CategoryAll, "quantum")
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p4" {
		t.Errorf("expected source order p1, p4; got %v", ids(got))
	}
}

func TestVisible_NoMatches(t *testing.T) {
	got := Visible(fixturePosts(), types.CategoryFood, "quantum")
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", ids(got))
	}
}

func TestVisible_DoesNotMutateInput(t *testing.T) {
	posts := fixturePosts()
	Visible(posts, types.CategoryArt, "mural")
	if diff := cmp.Diff(fixturePosts(), posts); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func assertIDs(t *testing.T, want []string, got []types.Post) {
	t.Helper()
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("post ids mismatch (-want +got):\n%s", diff)
	}
}

func ids(posts []types.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
