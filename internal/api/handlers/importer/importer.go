// Package importer 提供 WordPress 匯入的 HTTP 處理器。
package importer

import (
	"errors"
	"net/http"
	"strings"

	"recept/internal/core/importer"
	"recept/internal/core/recipe"
	"recept/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FetchRequest 抓取頁面
type FetchRequest struct {
	URL string `json:"url"`
}

// FetchResponse 抓取結果
type FetchResponse struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

// WordPressRequest 從網址匯入
type WordPressRequest struct {
	URL        string   `json:"url"`
	Categories []string `json:"categories,omitempty"`
}

// HTMLRequest 從貼上的 HTML 匯入
type HTMLRequest struct {
	HTML       string   `json:"html"`
	SourceURL  string   `json:"sourceUrl,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// DraftResponse 匯入草稿與其正規化 JSON，供編輯器預覽
type DraftResponse struct {
	Recipe *recipe.Recipe `json:"recipe"`
	JSON   string         `json:"json"`
}

// Handler 匯入處理程序
type Handler struct {
	importer *importer.Importer
	fetcher  *importer.Fetcher
}

// NewHandler 創建匯入處理程序
func NewHandler(im *importer.Importer, fetcher *importer.Fetcher) *Handler {
	return &Handler{importer: im, fetcher: fetcher}
}

// Fetch POST /import/fetch，代抓頁面 HTML
func (h *Handler) Fetch(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, importer.ErrMissingURL.Error())
		return
	}

	target, err := importer.NormalizeURL(req.URL)
	if err != nil {
		abortMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	body, err := h.fetcher.Fetch(c.Request.Context(), target)
	if err != nil {
		h.fetchFailed(c, target, err)
		return
	}
	c.JSON(http.StatusOK, FetchResponse{HTML: body, URL: target})
}

// WordPress POST /import/wordpress，抓取並轉換
func (h *Handler) WordPress(c *gin.Context) {
	var req WordPressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, importer.ErrMissingURL.Error())
		return
	}

	target, err := importer.NormalizeURL(req.URL)
	if err != nil {
		abortMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	body, err := h.fetcher.Fetch(c.Request.Context(), target)
	if err != nil {
		h.fetchFailed(c, target, err)
		return
	}
	h.convert(c, body, importer.Options{Categories: req.Categories, SourceURL: target})
}

// HTML POST /import/html，轉換已取得的 HTML
func (h *Handler) HTML(c *gin.Context) {
	var req HTMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, importer.ErrEmptyHTML.Error())
		return
	}
	h.convert(c, req.HTML, importer.Options{Categories: req.Categories, SourceURL: strings.TrimSpace(req.SourceURL)})
}

func (h *Handler) convert(c *gin.Context, src string, opts importer.Options) {
	draft, err := h.importer.Convert(src, opts)
	if err != nil {
		common.LogInfo("匯入失敗",
			zap.Error(err),
			zap.String("source", opts.SourceURL),
			zap.String("request_id", requestid.Get(c)),
		)
		abortMessage(c, http.StatusUnprocessableEntity, importMessage(err))
		return
	}

	out, err := recipe.ToJSON(draft)
	if err != nil {
		abortMessage(c, http.StatusUnprocessableEntity, importer.ErrInvalidDraft.Error())
		return
	}
	common.LogInfo("已匯入食譜草稿",
		zap.String("slug", draft.Slug),
		zap.Int("ingredients", len(draft.Ingredients)),
		zap.Int("steps", len(draft.Steps)),
	)
	c.JSON(http.StatusOK, DraftResponse{Recipe: draft, JSON: out})
}

func (h *Handler) fetchFailed(c *gin.Context, target string, err error) {
	common.LogWarn("抓取頁面失敗",
		zap.String("url", target),
		zap.Error(err),
		zap.String("request_id", requestid.Get(c)),
	)

	var statusErr *importer.StatusError
	switch {
	case errors.As(err, &statusErr):
		abortMessage(c, http.StatusBadGateway, statusErr.Error())
	case errors.Is(err, importer.ErrPageTooLarge):
		abortMessage(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortMessage(c, http.StatusBadGateway, common.ErrFetchFailed.Message)
	}
}

// importMessage 只把已知的匯入錯誤顯示給使用者
func importMessage(err error) string {
	for _, known := range []error{
		importer.ErrEmptyHTML,
		importer.ErrParseHTML,
		importer.ErrNoIngredients,
		importer.ErrNoSteps,
		importer.ErrInvalidDraft,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return common.ErrImportFailed.Message
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, common.MessageResponse{Error: msg})
}
