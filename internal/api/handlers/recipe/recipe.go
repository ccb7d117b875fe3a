// Package recipe 提供食譜目錄的 HTTP 處理器。
package recipe

import (
	"net/http"
	"time"

	"recept/internal/api/middleware"
	recipeService "recept/internal/core/recipe"
	"recept/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListResponse 食譜清單
type ListResponse struct {
	Recipes []*recipeService.Recipe `json:"recipes"`
	Count   int                     `json:"count"`
}

// ValidateResponse 驗證成功的回應，JSON 為正規化後的文件
type ValidateResponse struct {
	OK     bool                  `json:"ok"`
	Recipe *recipeService.Recipe `json:"recipe"`
	JSON   string                `json:"json"`
}

// PromptResponse LLM 提示詞
type PromptResponse struct {
	Prompt      string `json:"prompt"`
	Placeholder string `json:"placeholder"`
}

// Handler 食譜處理程序
type Handler struct {
	recipes *recipeService.Service
	now     func() time.Time
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipes *recipeService.Service) *Handler {
	return &Handler{recipes: recipes, now: time.Now}
}

// List GET /recipes?q=&tags=a,b&category=
func (h *Handler) List(c *gin.Context) {
	q := recipeService.Query{
		Text:     c.Query("q"),
		Tags:     splitTags(c.QueryArray("tags")),
		Category: c.Query("category"),
	}
	found, err := h.recipes.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, "載入食譜失敗", err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Recipes: found, Count: len(found)})
}

// Get GET /recipes/:slug
func (h *Handler) Get(c *gin.Context) {
	r, err := h.recipes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "載入食譜失敗", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Save POST /recipes，內容為 {content, message?}
func (h *Handler) Save(c *gin.Context) {
	req, ok := bindContent(c)
	if !ok {
		return
	}

	r, err := h.recipes.Save(c.Request.Context(), req.Content, req.Message)
	if err != nil {
		respondError(c, "儲存食譜失敗", err)
		return
	}

	common.LogInfo("編輯者已儲存食譜",
		zap.String("slug", r.Slug),
		zap.String("editor", c.GetString(middleware.EditorKey)),
		zap.String("request_id", requestid.Get(c)),
	)
	c.JSON(http.StatusOK, common.SavedResponse{
		OK:   true,
		Slug: r.Slug,
		Path: "/api/v1/recipes/" + r.Slug,
	})
}

// Delete DELETE /recipes/:slug
func (h *Handler) Delete(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.recipes.Delete(c.Request.Context(), slug, c.Query("message")); err != nil {
		respondError(c, "刪除食譜失敗", err)
		return
	}
	c.JSON(http.StatusOK, common.SavedResponse{OK: true, Slug: slug})
}

// Validate POST /recipes/validate，只驗證不儲存
func (h *Handler) Validate(c *gin.Context) {
	req, ok := bindContent(c)
	if !ok {
		return
	}

	res := h.recipes.Validate(req.Content)
	if !res.OK() {
		c.JSON(http.StatusBadRequest, common.ErrorsResponse{Error: res.Errors})
		return
	}
	out, err := recipeService.ToJSON(res.Recipe)
	if err != nil {
		respondError(c, "序列化食譜失敗", err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{OK: true, Recipe: res.Recipe, JSON: out})
}

// Template GET /template，回傳新食譜的起始 JSON
func (h *Handler) Template(c *gin.Context) {
	out, err := recipeService.ToJSON(recipeService.EmptyRecipe(h.now()))
	if err != nil {
		respondError(c, "產生範本失敗", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}

// Prompt GET /prompt?text=，text 存在時直接填入提示詞
func (h *Handler) Prompt(c *gin.Context) {
	prompt := recipeService.ConversionPrompt
	if text := c.Query("text"); text != "" {
		prompt = recipeService.BuildPrompt(text)
	}
	c.JSON(http.StatusOK, PromptResponse{
		Prompt:      prompt,
		Placeholder: recipeService.PromptPlaceholder,
	})
}
