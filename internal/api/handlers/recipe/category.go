package recipe

import (
	"net/http"

	recipeService "recept/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// CategoriesResponse 分類清單
type CategoriesResponse struct {
	Categories []recipeService.Category `json:"categories"`
}

// CategoryResponse 單一分類與其食譜
type CategoryResponse struct {
	Category recipeService.Category  `json:"category"`
	Recipes  []*recipeService.Recipe `json:"recipes"`
}

// TagsResponse 標籤索引
type TagsResponse struct {
	Tags []recipeService.TagCount `json:"tags"`
}

// Categories GET /categories
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.recipes.Categories(c.Request.Context())
	if err != nil {
		respondError(c, "載入分類失敗", err)
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: cats})
}

// Category GET /categories/:slug
func (h *Handler) Category(c *gin.Context) {
	cat, recipes, err := h.recipes.Category(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, "載入分類失敗", err)
		return
	}
	c.JSON(http.StatusOK, CategoryResponse{Category: cat, Recipes: recipes})
}

// Tags GET /tags
func (h *Handler) Tags(c *gin.Context) {
	tags, err := h.recipes.Tags(c.Request.Context())
	if err != nil {
		respondError(c, "載入標籤失敗", err)
		return
	}
	c.JSON(http.StatusOK, TagsResponse{Tags: tags})
}
