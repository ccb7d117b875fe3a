package importer

import (
	"regexp"
	"strings"

	"recept/internal/core/recipe"
)

const (
	fractions = "¼½¾⅓⅔⅛"
	units     = `kg|hg|g|gram|mg|dl|cl|ml|l|liter|msk|tsk|krm|st|styck|stycken|burk|burkar|paket|förp|klyfta|klyftor|kruka|knippe|nypa|skiva|skivor|tbsp|tsp|cups?|oz|lbs?`
	number    = `(?:\d+(?:[.,/]\d+)?|[` + fractions + `])(?:\s*[` + fractions + `])?`
)

var (
	whitespace    = regexp.MustCompile(`\s+`)
	notesPattern  = regexp.MustCompile(`\(([^)]+)\)`)
	timesPattern  = regexp.MustCompile(`^(.+?)\s*×\s*(.+)$`)
	xPattern      = regexp.MustCompile(`(?i)^(.+?)\s+x\s*(\d.*)$`)
	dashPattern   = regexp.MustCompile(`^(.*?)\s*[-–—:]\s*(.+)$`)
	amountStart   = regexp.MustCompile(`^(?:[0-9` + fractions + `]|en\b|ett\b|halv)`)
	leadingAmount = regexp.MustCompile(`(?i)^(` + number + `(?:\s*[-–]\s*` + number + `)?(?:\s*(?:` + units + `)\.?)?)\s+(.+)$`)
)

// cleanText 合併空白並去除前後空白
func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// looksLikeAmount 文字是否像份量：數字、分數字元或 en/ett/halv 開頭
func looksLikeAmount(s string) bool {
	return amountStart.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// ParseIngredientLine 將清單項目拆成 label、amount 與 notes。
//
// 依序處理：括號內容成為 notes；"label × amount"；結尾以破折號或冒號分隔的份量；
// 開頭的數量與單位（"2 dl tomatsås"）。都不符合時整行為 label。
func ParseIngredientLine(raw string) recipe.Ingredient {
	text := cleanText(raw)
	if text == "" {
		return recipe.Ingredient{Kind: recipe.KindIngredient}
	}

	var notes string
	if m := notesPattern.FindStringSubmatchIndex(text); m != nil {
		notes = cleanText(text[m[2]:m[3]])
		text = cleanText(text[:m[0]] + " " + text[m[1]:])
	}

	label, amount := text, ""
	switch {
	case timesPattern.MatchString(text):
		m := timesPattern.FindStringSubmatch(text)
		label, amount = m[1], m[2]
	case xPattern.MatchString(text):
		m := xPattern.FindStringSubmatch(text)
		label, amount = m[1], m[2]
	default:
		if m := dashPattern.FindStringSubmatch(text); m != nil && m[1] != "" && !looksLikeAmount(m[1]) && looksLikeAmount(m[2]) {
			label, amount = m[1], m[2]
		} else if m := leadingAmount.FindStringSubmatch(text); m != nil {
			amount, label = m[1], m[2]
		}
	}

	return recipe.Ingredient{
		Label:  cleanText(label),
		Amount: cleanText(amount),
		Notes:  notes,
		Kind:   recipe.KindIngredient,
	}
}
