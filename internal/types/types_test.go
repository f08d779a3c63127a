package types

import (
	"strings"
	"testing"
)

func TestExcerpt_LongContent(t *testing.T) {
	content := strings.Repeat("a", 400)
	got := Excerpt(content)
	want := strings.Repeat("a", 150) + "..."
	if got != want {
		t.Errorf("expected %d-char excerpt, got %d chars", len(want), len(got))
	}
}

func TestExcerpt_ShortContent(t *testing.T) {
	got := Excerpt("hello")
	if got != "hello..." {
		t.Errorf("expected hello..., got %q", got)
	}
}

func TestExcerpt_MultibyteBoundary(t *testing.T) {
	// 200 multibyte runes; the cut must land on a rune boundary.
	content := strings.Repeat("é", 200)
	got := Excerpt(content)
	want := strings.Repeat("é", 150) + "..."
	if got != want {
		t.Errorf("excerpt split a multibyte rune: got %q", got[:12])
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
}

func TestExcerpt_ExactLimit(t *testing.T) {
	content := strings.Repeat("b", 150)
	if got := Excerpt(content); got != content+"..." {
		t.Errorf("unexpected excerpt for exact-length content: %q", got)
	}
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("category %s should be valid", c)
		}
	}
	for _, c := range []Category{"", "art", "MUSIC", "SCIENCE "} {
		if c.Valid() {
			t.Errorf("category %q should be invalid", c)
		}
	}
}

func TestCategories_Count(t *testing.T) {
	if got := len(Categories()); got != 6 {
		t.Errorf("expected 6 categories, got %d", got)
	}
}
