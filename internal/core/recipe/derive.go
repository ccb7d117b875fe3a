package recipe

import (
	"strings"
	"time"
)

// isoLayout 與 JavaScript toISOString 相同的格式
const isoLayout = "2006-01-02T15:04:05.000Z"

// DeriveCategories 合併三個分類面向與額外分類：去除空白、去除重複、保留首次出現順序
func DeriveCategories(place, base, kind string, extra []string) []string {
	candidates := make([]string, 0, 3+len(extra))
	candidates = append(candidates, place, base, kind)
	candidates = append(candidates, extra...)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CategoriesOf 重新計算食譜的分類，不信任已儲存的 categories
func CategoriesOf(r *Recipe) []string {
	return DeriveCategories(r.CategoryPlace, r.CategoryBase, r.CategoryType, r.Categories)
}

// DeriveTitleSegments 由前綴、標題、後綴推導標題片段（small, big, small），略過空白部分
func DeriveTitleSegments(prefix, title, suffix string) []TitleSegment {
	segments := make([]TitleSegment, 0, 3)
	if p := strings.TrimSpace(prefix); p != "" {
		segments = append(segments, TitleSegment{Text: p, Size: SizeSmall})
	}
	if t := strings.TrimSpace(title); t != "" {
		segments = append(segments, TitleSegment{Text: t, Size: SizeBig})
	}
	if s := strings.TrimSpace(suffix); s != "" {
		segments = append(segments, TitleSegment{Text: s, Size: SizeSmall})
	}
	return segments
}

// SegmentsText 以空白串接所有片段文字
func SegmentsText(segments []TitleSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// FlattenGroups 將所有分組的食材依序攤平
func FlattenGroups(groups []IngredientGroup) []Ingredient {
	var out []Ingredient
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}

// FormatTimestamp 以 UTC 毫秒 ISO-8601 格式輸出
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
