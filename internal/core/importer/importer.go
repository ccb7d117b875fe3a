// Package importer 將 WordPress 食譜頁面的 HTML 轉換為食譜草稿。
package importer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"recept/internal/core/recipe"
	"recept/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	fallbackTitle       = "Importerad rätt"
	fallbackDescription = "Uppdatera beskrivningen efter import."
	fallbackSlug        = "importerat-recept"
	defaultServings     = 4
)

// 匯入失敗的原因，可用 errors.Is 判斷
var (
	ErrEmptyHTML     = errors.New("Kunde inte läsa HTML från WordPress-länken.")
	ErrParseHTML     = errors.New("Kunde inte tolka HTML-dokumentet.")
	ErrNoIngredients = errors.New("Hittade inga ingredientslistor i HTML:en. Säkerställ att WordPress-inlägget använder checklistor.")
	ErrNoSteps       = errors.New("Hittade inga tillagningssteg att importera.")
	ErrInvalidDraft  = errors.New("Det importerade receptet klarade inte valideringen.")
)

// 轉換時間用的格式，依序嘗試
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options 單次匯入的選項
type Options struct {
	// Categories 非空時取代草稿的 categories
	Categories []string
	// SourceURL 頁面沒有 canonical 連結時使用，也用來解析相對圖片網址
	SourceURL string
}

// Importer WordPress HTML 轉換器
type Importer struct {
	layout       Layout
	defaultImage string
	now          func() time.Time
}

// New 建立轉換器；defaultImage 為空時使用 recipe.DefaultImage
func New(layout Layout, defaultImage string) *Importer {
	if defaultImage == "" {
		defaultImage = recipe.DefaultImage
	}
	return &Importer{layout: layout, defaultImage: defaultImage, now: time.Now}
}

// Convert 轉換 HTML 為通過正規化的食譜；找不到食材或步驟時整個匯入失敗
func (im *Importer) Convert(src string, opts Options) (*recipe.Recipe, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyHTML
	}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrParseHTML, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	)
	if title == "" {
		title = fallbackTitle
	}

	description := firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
	)
	if description == "" {
		description = fallbackDescription
	}

	source := firstNonEmpty(
		attr(doc, `link[rel="canonical"]`, "href"),
		metaContent(doc, `meta[property="og:url"]`),
		opts.SourceURL,
	)
	if !recipe.IsAbsoluteURL(source) {
		source = ""
	}

	image := im.resolveImage(firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
	), firstNonEmpty(source, opts.SourceURL))

	createdAt := im.parseDate(metaContent(doc, `meta[property="article:published_time"]`))
	updatedAt := createdAt
	if modified := metaContent(doc, `meta[property="article:modified_time"]`); modified != "" {
		updatedAt = im.parseDate(modified)
	}

	groups := im.collectIngredientGroups(doc)
	if len(groups) == 0 {
		return nil, ErrNoIngredients
	}
	steps := im.collectSteps(doc)
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	slug := recipe.Slugify(title)
	if slug == "" {
		slug = fallbackSlug
	}

	draft := &recipe.Recipe{
		Title:           title,
		Slug:            slug,
		Description:     description,
		Tags:            im.collectTags(doc),
		PrepTimeMinutes: 0,
		CookTimeMinutes: 0,
		Servings:        defaultServings,
		ImageURL:        image,
		Categories:      opts.Categories,
		Ingredients:     recipe.FlattenGroups(groups),
		Steps:           steps,
		Source:          source,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	if len(groups) > 1 {
		draft.IngredientGroups = groups
	}

	normalized, errs := recipe.Renormalize(draft)
	if len(errs) > 0 {
		common.LogWarn("匯入草稿驗證失敗", zap.Strings("errors", errs))
		return nil, fmt.Errorf("%w %s", ErrInvalidDraft, strings.Join(errs, "; "))
	}

	common.LogDebug("WordPress 匯入完成",
		zap.String("slug", normalized.Slug),
		zap.Int("ingredients", len(normalized.Ingredients)),
		zap.Int("steps", len(normalized.Steps)),
	)
	return normalized, nil
}

// collectIngredientGroups 在含有清單的欄位容器中，依序配對標題區塊與清單
func (im *Importer) collectIngredientGroups(doc *goquery.Document) []recipe.IngredientGroup {
	var groups []recipe.IngredientGroup
	doc.Find(im.layout.ColumnWrapper).Each(func(_ int, wrapper *goquery.Selection) {
		if wrapper.Find(im.layout.Checklist).Length() == 0 {
			return
		}

		var currentTitle string
		wrapper.Children().Each(func(_ int, child *goquery.Selection) {
			if child.Is(im.layout.TitleBlock) {
				currentTitle = cleanText(child.Find(im.layout.Headings).First().Text())
				return
			}

			list := child.Filter(im.layout.Checklist)
			if list.Length() == 0 {
				list = child.Find(im.layout.Checklist).First()
			}
			if list.Length() == 0 {
				return
			}
			if items := im.collectItems(list); len(items) > 0 {
				groups = append(groups, recipe.IngredientGroup{
					Title: im.normalizeGroupTitle(currentTitle),
					Items: items,
				})
			}
			currentTitle = ""
		})
	})
	return groups
}

func (im *Importer) collectItems(list *goquery.Selection) []recipe.Ingredient {
	var items []recipe.Ingredient
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := li.Text()
		if content := li.Find(im.layout.ItemContent).First(); content.Length() > 0 {
			text = content.Text()
		}
		if item := ParseIngredientLine(text); item.Label != "" {
			items = append(items, item)
		}
	})
	return items
}

func (im *Importer) normalizeGroupTitle(title string) string {
	for _, t := range im.layout.DefaultGroupTitles {
		if strings.EqualFold(title, t) {
			return ""
		}
	}
	return title
}

// collectSteps 優先使用分頁，其次依序嘗試段落選擇器
func (im *Importer) collectSteps(doc *goquery.Document) []recipe.Step {
	var bodies []string
	doc.Find(im.layout.TabPanes).Each(func(_ int, pane *goquery.Selection) {
		if text := blockText(pane); text != "" {
			bodies = append(bodies, text)
		}
	})
	if len(bodies) == 0 {
		for _, sel := range im.layout.Paragraphs {
			doc.Find(sel).Each(func(_ int, p *goquery.Selection) {
				if text := blockText(p); text != "" {
					bodies = append(bodies, text)
				}
			})
			if len(bodies) > 0 {
				break
			}
		}
	}

	steps := make([]recipe.Step, 0, len(bodies))
	for i, body := range bodies {
		step := recipe.Step{Body: body}
		if len(bodies) > 1 {
			step.Title = fmt.Sprintf("Steg %d", i+1)
		}
		steps = append(steps, step)
	}
	return steps
}

// collectTags 從分類法連結收集標籤，不分大小寫去重
func (im *Importer) collectTags(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, sel := range im.layout.TagLinks {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			text := cleanText(a.Text())
			key := strings.ToLower(text)
			if text == "" || seen[key] {
				return
			}
			seen[key] = true
			tags = append(tags, text)
		})
	}
	if im.layout.MaxTags > 0 && len(tags) > im.layout.MaxTags {
		tags = tags[:im.layout.MaxTags]
	}
	return tags
}

// resolveImage 絕對網址直接使用；相對網址以來源頁面解析；否則用預設圖片
func (im *Importer) resolveImage(raw, base string) string {
	if raw == "" {
		return im.defaultImage
	}
	if recipe.IsAbsoluteURL(raw) {
		return raw
	}
	if base != "" {
		if b, err := url.Parse(base); err == nil && b.IsAbs() {
			if ref, err := url.Parse(raw); err == nil {
				return b.ResolveReference(ref).String()
			}
		}
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return im.defaultImage
}

// parseDate 解析發布時間；失敗時使用現在時間
func (im *Importer) parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return recipe.FormatTimestamp(t)
		}
	}
	return recipe.FormatTimestamp(im.now())
}

func metaContent(doc *goquery.Document, selector string) string {
	return attr(doc, selector, "content")
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if c := cleanText(v); c != "" {
			return c
		}
	}
	return ""
}

// blockText 取出元素文字，區塊元素之間補上空白
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return cleanText(b.String())
}

var blockElements = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}
