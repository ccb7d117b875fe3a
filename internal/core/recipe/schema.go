package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	indexPart   = regexp.MustCompile(`\[(\d+)\]`)

	validate = newValidator()
)

// ValidSlug 檢查 slug 是否符合 ^[a-z0-9-]+$
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// IsAbsoluteURL 是否為含 scheme 的絕對網址
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// ValidTimestamp 是否為 UTC 的 ISO-8601 時間字串
func ValidTimestamp(raw string) bool {
	if !strings.HasSuffix(raw, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, raw)
	return err == nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	mustRegister(v, "imageurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.HasPrefix(s, "/") || IsAbsoluteURL(s)
	})
	mustRegister(v, "isotime", func(fl validator.FieldLevel) bool {
		return ValidTimestamp(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Normalize 驗證已解碼的 JSON 值，並填入所有衍生欄位。
//
// 失敗時回傳 "<路徑>: <訊息>" 格式的錯誤列表；格式錯誤的輸入不會 panic。
// 分類面向（place/base/type）缺少或型別錯誤時一律視為空字串，不算錯誤。
func Normalize(raw any) (*Recipe, []string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, []string{"(root): Expected object, received " + typeName(raw)}
	}

	rd := &reader{failed: map[string]bool{}}
	groups := rd.groups(obj, "ingredientGroups")
	r := &Recipe{
		Title:            rd.str(obj, "title", "title", true),
		TitlePrefix:      rd.str(obj, "titlePrefix", "titlePrefix", false),
		TitleSuffix:      rd.str(obj, "titleSuffix", "titleSuffix", false),
		TitleSegments:    rd.segments(obj, "titleSegments"),
		Slug:             rd.str(obj, "slug", "slug", true),
		Description:      rd.str(obj, "description", "description", true),
		Tags:             rd.strings(obj, "tags", "tags"),
		PrepTimeMinutes:  rd.integer(obj, "prepTimeMinutes", "prepTimeMinutes"),
		CookTimeMinutes:  rd.integer(obj, "cookTimeMinutes", "cookTimeMinutes"),
		Servings:         rd.integer(obj, "servings", "servings"),
		ImageURL:         rd.str(obj, "imageUrl", "imageUrl", false),
		CategoryPlace:    lenientString(obj["categoryPlace"]),
		CategoryBase:     lenientString(obj["categoryBase"]),
		CategoryType:     lenientString(obj["categoryType"]),
		Categories:       rd.strings(obj, "categories", "categories"),
		Ingredients:      rd.ingredients(obj["ingredients"], "ingredients", len(groups) == 0),
		IngredientGroups: groups,
		Steps:            rd.steps(obj, "steps"),
		Source:           rd.str(obj, "source", "source", false),
		CreatedAt:        rd.str(obj, "createdAt", "createdAt", false),
		UpdatedAt:        rd.str(obj, "updatedAt", "updatedAt", false),
	}

	applyDerived(r)

	errs := append(rd.errs, validationErrors(r, rd.covers)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return r, nil
}

// Renormalize 對已型別化的食譜重新套用衍生欄位與驗證
func Renormalize(r *Recipe) (*Recipe, []string) {
	if r == nil {
		return nil, []string{"(root): Expected object, received null"}
	}
	clone := r.Clone()
	applyDerived(clone)
	if errs := validationErrors(clone, func(string) bool { return false }); len(errs) > 0 {
		return nil, errs
	}
	return clone, nil
}

// validationErrors 執行規則驗證；skip 回傳 true 的路徑已有型別錯誤，不重複回報。
// 標題無效時不另外回報衍生出的空 titleSegments。
func validationErrors(r *Recipe, skip func(path string) bool) []string {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"(root): " + err.Error()}
	}
	var errs []string
	titleFailed := skip("title")
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if path == "title" {
			titleFailed = true
		}
		if skip(path) || (path == "titleSegments" && titleFailed) {
			continue
		}
		errs = append(errs, path+": "+messageFor(fe))
	}
	return errs
}

// applyDerived 填入預設值與衍生欄位
func applyDerived(r *Recipe) {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	for gi := range r.IngredientGroups {
		defaultKinds(r.IngredientGroups[gi].Items)
	}
	if len(r.IngredientGroups) > 0 {
		if flat := FlattenGroups(r.IngredientGroups); len(flat) > 0 {
			r.Ingredients = flat
		}
	} else {
		r.IngredientGroups = nil
	}
	defaultKinds(r.Ingredients)
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []Step{}
	}
	if len(r.TitleSegments) == 0 {
		r.TitleSegments = DeriveTitleSegments(r.TitlePrefix, r.Title, r.TitleSuffix)
	}
	r.Categories = DeriveCategories(r.CategoryPlace, r.CategoryBase, r.CategoryType, r.Categories)
}

func defaultKinds(items []Ingredient) {
	for i := range items {
		if items[i].Kind == "" {
			items[i].Kind = KindIngredient
		}
	}
}

// fieldPath 將 "Recipe.steps[0].body" 轉為 "steps.0.body"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPart.ReplaceAllString(namespace, ".$1")
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		switch fe.Field() {
		case "title":
			return "Title is required"
		case "description":
			return "Description is required"
		case "body":
			return "Step text required"
		case "text":
			return "Segment text required"
		}
		return "Required"
	case "nonblank":
		if fe.Field() == "title" {
			return "Title is required"
		}
		return "Required"
	case "required_unless":
		return "Ingredient label required"
	case "slug":
		return "Use kebab-case for slug"
	case "min":
		switch fe.Field() {
		case "ingredients":
			return "At least one ingredient"
		case "steps":
			return "At least one step"
		case "items":
			return "Group must include ingredients"
		case "titleSegments":
			return "At least one title segment"
		}
		return "Must contain at least " + fe.Param() + " element(s)"
	case "gte":
		return "Number must be greater than or equal to " + fe.Param()
	case "gt":
		return "Number must be greater than " + fe.Param()
	case "url", "imageurl":
		return "Invalid url"
	case "isotime":
		return "Invalid datetime"
	case "oneof":
		opts := strings.Fields(fe.Param())
		return "Invalid enum value. Expected '" + strings.Join(opts, "' | '") + "'"
	}
	return "Invalid value (" + fe.Tag() + ")"
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func lenientString(v any) string {
	s, _ := v.(string)
	return s
}

// reader 將鬆散的 JSON 值讀成型別化欄位，並記錄型別錯誤
type reader struct {
	errs   []string
	failed map[string]bool
}

func (rd *reader) fail(path, msg string) {
	rd.errs = append(rd.errs, path+": "+msg)
	rd.failed[path] = true
}

// covers 該路徑（或其上層）是否已回報型別錯誤
func (rd *reader) covers(path string) bool {
	for p := path; ; {
		if rd.failed[p] {
			return true
		}
		i := strings.LastIndex(p, ".")
		if i < 0 {
			return false
		}
		p = p[:i]
	}
}

func (rd *reader) str(obj map[string]any, key, path string, required bool) string {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			rd.fail(path, "Required")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		rd.fail(path, "Expected string, received "+typeName(v))
		return ""
	}
	return s
}

func (rd *reader) integer(obj map[string]any, key, path string) int {
	v, ok := obj[key]
	if !ok || v == nil {
		rd.fail(path, "Required")
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.Atoi(n.String()); err == nil {
			return i
		}
		f, err := n.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			break
		}
		return rd.whole(f, path)
	case float64:
		return rd.whole(n, path)
	case int:
		return n
	}
	rd.fail(path, "Expected number, received "+typeName(v))
	return 0
}

// whole 將浮點數轉為整數；超出 int 範圍或帶小數時回報錯誤
func (rd *reader) whole(f float64, path string) int {
	if math.IsInf(f, 0) || math.IsNaN(f) || f >= math.MaxInt || f <= math.MinInt {
		rd.fail(path, "Number too large")
		return 0
	}
	if f != math.Trunc(f) {
		rd.fail(path, "Expected integer, received float")
		return 0
	}
	return int(f)
}

func (rd *reader) array(obj map[string]any, key, path string, required bool) ([]any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			rd.fail(path, "Required")
		}
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		rd.fail(path, "Expected array, received "+typeName(v))
		return nil, false
	}
	return arr, true
}

func (rd *reader) object(v any, path string) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		rd.fail(path, "Expected object, received "+typeName(v))
	}
	return m, ok
}

func (rd *reader) strings(obj map[string]any, key, path string) []string {
	arr, ok := rd.array(obj, key, path, false)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			rd.fail(path+"."+strconv.Itoa(i), "Expected string, received "+typeName(item))
			continue
		}
		out = append(out, s)
	}
	return out
}

func (rd *reader) segments(obj map[string]any, path string) []TitleSegment {
	arr, ok := rd.array(obj, "titleSegments", path, false)
	if !ok {
		return nil
	}
	out := make([]TitleSegment, 0, len(arr))
	for i, item := range arr {
		p := path + "." + strconv.Itoa(i)
		m, ok := rd.object(item, p)
		if !ok {
			continue
		}
		out = append(out, TitleSegment{
			Text: rd.str(m, "text", p+".text", true),
			Size: SegmentSize(rd.str(m, "size", p+".size", true)),
		})
	}
	return out
}

func (rd *reader) ingredients(v any, path string, required bool) []Ingredient {
	if v == nil {
		if required {
			rd.fail(path, "Required")
		}
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		rd.fail(path, "Expected array, received "+typeName(v))
		return nil
	}
	out := make([]Ingredient, 0, len(arr))
	for i, item := range arr {
		p := path + "." + strconv.Itoa(i)
		m, ok := rd.object(item, p)
		if !ok {
			continue
		}
		out = append(out, Ingredient{
			Label:  rd.str(m, "label", p+".label", false),
			Amount: rd.str(m, "amount", p+".amount", false),
			Notes:  rd.str(m, "notes", p+".notes", false),
			Kind:   IngredientKind(rd.str(m, "kind", p+".kind", false)),
		})
	}
	return out
}

func (rd *reader) groups(obj map[string]any, path string) []IngredientGroup {
	arr, ok := rd.array(obj, "ingredientGroups", path, false)
	if !ok {
		return nil
	}
	out := make([]IngredientGroup, 0, len(arr))
	for i, item := range arr {
		p := path + "." + strconv.Itoa(i)
		m, ok := rd.object(item, p)
		if !ok {
			continue
		}
		items := rd.ingredients(m["items"], p+".items", true)
		if items == nil {
			items = []Ingredient{}
		}
		out = append(out, IngredientGroup{
			Title: rd.str(m, "title", p+".title", false),
			Items: items,
		})
	}
	return out
}

func (rd *reader) steps(obj map[string]any, path string) []Step {
	arr, ok := rd.array(obj, "steps", path, true)
	if !ok {
		return nil
	}
	out := make([]Step, 0, len(arr))
	for i, item := range arr {
		p := path + "." + strconv.Itoa(i)
		m, ok := rd.object(item, p)
		if !ok {
			continue
		}
		out = append(out, Step{
			Title: rd.str(m, "title", p+".title", false),
			Body:  rd.str(m, "body", p+".body", true),
		})
	}
	return out
}
