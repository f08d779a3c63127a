// Package filter narrows a post list by category and free-text query.
// Filtering is pure: it never mutates or reorders its input.
package filter

import (
	"strings"

	"samina/internal/types"
)

// CategoryAll matches every category.
const CategoryAll = types.Category("All")

// Visible returns the posts matching both the category and the query,
// in their original order. An empty or "All" category matches everything;
// the query is a case-insensitive substring match against title and
// excerpt. Both conditions must hold.
func Visible(posts []types.Post, category types.Category, query string) []types.Post {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]types.Post, 0, len(posts))
	for _, p := range posts {
		if !matchesCategory(p, category) {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p types.Post, category types.Category) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return p.Category == category
}

func matchesQuery(p types.Post, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Excerpt), query)
}
