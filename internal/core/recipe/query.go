package recipe

import "strings"

// Query 清單篩選條件，三個條件以 AND 結合
type Query struct {
	Text     string
	Tags     []string
	Category string
}

// MatchQuery 文字不分大小寫比對標題、描述、標籤與分類；
// 標籤必須全部包含；categorySlug 為空時不篩選分類。
func MatchQuery(r *Recipe, query string, activeTags []string, categorySlug string) bool {
	if r == nil {
		return false
	}
	return matchesText(r, query) && hasAllTags(r, activeTags) &&
		(categorySlug == "" || InCategory(r, categorySlug))
}

// Filter 依條件過濾快照，保留原順序
func Filter(recipes []*Recipe, q Query) []*Recipe {
	out := make([]*Recipe, 0, len(recipes))
	for _, r := range recipes {
		if MatchQuery(r, q.Text, q.Tags, q.Category) {
			out = append(out, r)
		}
	}
	return out
}

func matchesText(r *Recipe, query string) bool {
	search := strings.ToLower(strings.TrimSpace(query))
	if search == "" {
		return true
	}
	fields := []string{
		r.Title,
		r.Description,
		strings.Join(r.Tags, " "),
		strings.Join(CategoriesOf(r), " "),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func hasAllTags(r *Recipe, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range r.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
