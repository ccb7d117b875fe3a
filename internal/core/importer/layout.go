package importer

// Layout 描述 WordPress 佈景的 DOM 結構。預設值對應 Avada/Fusion builder。
type Layout struct {
	// ColumnWrapper 包住食材清單的欄位容器
	ColumnWrapper string
	// Checklist 食材清單
	Checklist string
	// TitleBlock 清單前的標題區塊，內含 Headings
	TitleBlock string
	Headings   string
	// ItemContent 清單項目中的文字節點
	ItemContent string
	// TabPanes 分頁式的步驟
	TabPanes string
	// Paragraphs 沒有分頁時依序嘗試的段落選擇器，第一個有結果的勝出
	Paragraphs []string
	// TagLinks 指向分類法頁面的連結
	TagLinks []string
	MaxTags  int
	// DefaultGroupTitles 視為「沒有標題」的分組名稱（小寫比對）
	DefaultGroupTitles []string
}

// DefaultLayout Avada/Fusion 佈景
func DefaultLayout() Layout {
	return Layout{
		ColumnWrapper:      ".fusion-column-wrapper",
		Checklist:          "ul.fusion-checklist",
		TitleBlock:         ".fusion-title",
		Headings:           "h1, h2, h3, h4, h5, h6",
		ItemContent:        ".fusion-li-item-content",
		TabPanes:           ".fusion-tabs .tab-pane",
		Paragraphs:         []string{".post-content p", ".entry-content p", "article p"},
		TagLinks:           []string{`a[href*="/tag/"]`, `a[href*="/recept/"]`},
		MaxTags:            5,
		DefaultGroupTitles: []string{"ingredienser", "ingredients"},
	}
}
