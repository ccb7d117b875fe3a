package recipe

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 將分類名稱轉為 URL 安全的 slug。
// 會先移除變音符號（Öl → ol），再把非 [a-z0-9] 的連續字元折疊成 "-"。
func Slugify(name string) string {
	folded, _, err := transform.String(foldMarks(), strings.TrimSpace(name))
	if err != nil {
		folded = name
	}
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// foldMarks 每次建立新的 transformer，transform.Chain 不可並行共用
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// BuildCategories 由食譜集合彙整分類，依瑞典文排序。
//
// 分類圖片取第一個有圖片的食譜；整個分類都沒有圖片時才使用 fallbackImage。
// 同一食譜中 slug 相同的名稱只計算一次。
// 不會修改傳入的食譜。
func BuildCategories(recipes []*Recipe, fallbackImage string) []Category {
	index := make(map[string]int)
	var out []Category

	for _, r := range recipes {
		if r == nil {
			continue
		}
		seen := make(map[string]bool)
		for _, name := range CategoriesOf(r) {
			slug := Slugify(name)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			if i, ok := index[slug]; ok {
				out[i].Count++
				if out[i].Image == "" && r.ImageURL != "" {
					out[i].Image = r.ImageURL
				}
				continue
			}
			index[slug] = len(out)
			out = append(out, Category{Name: name, Slug: slug, Image: r.ImageURL, Count: 1})
		}
	}

	for i := range out {
		if out[i].Image == "" {
			out[i].Image = fallbackImage
		}
	}

	col := collate.New(language.Swedish)
	sort.SliceStable(out, func(a, b int) bool {
		return col.CompareString(out[a].Name, out[b].Name) < 0
	})
	if out == nil {
		out = []Category{}
	}
	return out
}

// InCategory 食譜是否屬於指定分類 slug
func InCategory(r *Recipe, slug string) bool {
	for _, name := range CategoriesOf(r) {
		if Slugify(name) == slug {
			return true
		}
	}
	return false
}

// CollectTags 統計所有標籤的出現次數，依瑞典文排序
func CollectTags(recipes []*Recipe) []TagCount {
	counts := make(map[string]int)
	for _, r := range recipes {
		if r == nil {
			continue
		}
		seen := make(map[string]bool, len(r.Tags))
		for _, tag := range r.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	col := collate.New(language.Swedish)
	sort.Slice(out, func(a, b int) bool {
		if c := col.CompareString(out[a].Tag, out[b].Tag); c != 0 {
			return c < 0
		}
		return out[a].Tag < out[b].Tag
	})
	return out
}
