package recipe

// SegmentSize 標題片段的顯示大小
type SegmentSize string

const (
	SizeBig   SegmentSize = "big"
	SizeSmall SegmentSize = "small"
)

// IngredientKind 食材列的種類
type IngredientKind string

const (
	KindIngredient IngredientKind = "ingredient"
	KindHeading    IngredientKind = "heading"
)

// TitleSegment 標題的渲染片段
type TitleSegment struct {
	Text string      `json:"text" validate:"required"`
	Size SegmentSize `json:"size" validate:"oneof=big small"`
}

// Ingredient 食材
type Ingredient struct {
	Label  string         `json:"label" validate:"required_unless=Kind heading"`
	Amount string         `json:"amount,omitempty"`
	Notes  string         `json:"notes,omitempty"`
	Kind   IngredientKind `json:"kind" validate:"oneof=ingredient heading"`
}

// IngredientGroup 具名的食材分組
type IngredientGroup struct {
	Title string       `json:"title,omitempty"`
	Items []Ingredient `json:"items" validate:"min=1,dive"`
}

// Step 料理步驟，順序有意義
type Step struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body" validate:"required"`
}

// Recipe 食譜文件。欄位宣告順序即序列化順序。
//
// Categories 為衍生欄位，每次載入與儲存都會重新計算；TitleSegments 缺少時才推導。
type Recipe struct {
	Title            string            `json:"title" validate:"required,nonblank"`
	TitlePrefix      string            `json:"titlePrefix,omitempty"`
	TitleSuffix      string            `json:"titleSuffix,omitempty"`
	TitleSegments    []TitleSegment    `json:"titleSegments" validate:"min=1,dive"`
	Slug             string            `json:"slug" validate:"slug"`
	Description      string            `json:"description" validate:"required"`
	Tags             []string          `json:"tags"`
	PrepTimeMinutes  int               `json:"prepTimeMinutes" validate:"gte=0"`
	CookTimeMinutes  int               `json:"cookTimeMinutes" validate:"gte=0"`
	Servings         int               `json:"servings" validate:"gt=0"`
	ImageURL         string            `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	CategoryPlace    string            `json:"categoryPlace"`
	CategoryBase     string            `json:"categoryBase"`
	CategoryType     string            `json:"categoryType"`
	Categories       []string          `json:"categories"`
	Ingredients      []Ingredient      `json:"ingredients" validate:"min=1,dive"`
	IngredientGroups []IngredientGroup `json:"ingredientGroups,omitempty" validate:"omitempty,dive"`
	Steps            []Step            `json:"steps" validate:"min=1,dive"`
	Source           string            `json:"source,omitempty" validate:"omitempty,url"`
	CreatedAt        string            `json:"createdAt,omitempty" validate:"omitempty,isotime"`
	UpdatedAt        string            `json:"updatedAt,omitempty" validate:"omitempty,isotime"`
}

// Category 由食譜集合衍生的分類，不會被儲存
type Category struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
	Count int    `json:"count"`
}

// TagCount 標籤與出現次數
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Result 解析結果：Recipe 與 Errors 只會有一個被設定
type Result struct {
	Recipe *Recipe  `json:"recipe,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// OK 是否解析成功
func (r Result) OK() bool {
	return r.Recipe != nil && len(r.Errors) == 0
}

// IsHeading 是否為分隔標題列
func (i Ingredient) IsHeading() bool {
	return i.Kind == KindHeading
}

// TotalMinutes 準備與烹調總時間
func (r *Recipe) TotalMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// Clone 深拷貝食譜，讓快取與呼叫端不共用切片
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.TitleSegments = cloneSlice(r.TitleSegments)
	c.Tags = cloneSlice(r.Tags)
	c.Categories = cloneSlice(r.Categories)
	c.Ingredients = cloneSlice(r.Ingredients)
	c.Steps = cloneSlice(r.Steps)
	if r.IngredientGroups != nil {
		c.IngredientGroups = make([]IngredientGroup, len(r.IngredientGroups))
		for i, g := range r.IngredientGroups {
			c.IngredientGroups[i] = IngredientGroup{Title: g.Title, Items: cloneSlice(g.Items)}
		}
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
