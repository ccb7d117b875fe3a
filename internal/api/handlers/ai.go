package handlers

import (
	"errors"
	"net/http"

	"recept/internal/core/ai"
	"recept/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConvertRequest 自由文字食譜
type ConvertRequest struct {
	Text string `json:"text"`
}

// AIHandler AI 轉換處理器
type AIHandler struct {
	converter *ai.Converter
}

// NewAIHandler 創建 AI 處理器
func NewAIHandler(converter *ai.Converter) *AIHandler {
	return &AIHandler{converter: converter}
}

// Convert POST /convert。模型輸出未通過驗證時仍回傳 200，錯誤放在 errors 欄位。
func (h *AIHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.MessageResponse{
			Error: common.ErrInvalidRequest.Message,
			Code:  common.ErrCodeInvalidRequest,
		})
		return
	}

	conv, err := h.converter.Convert(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, ai.ErrProviderDisabled):
		c.JSON(http.StatusServiceUnavailable, common.MessageResponse{
			Error: "AI conversion is disabled. Use the prompt instead.",
			Code:  common.ErrCodeServiceUnavailable,
		})
		return
	case errors.Is(err, ai.ErrEmptyText):
		c.JSON(http.StatusBadRequest, common.ErrorsResponse{Error: []string{"text: Required"}})
		return
	case err != nil:
		common.LogError("AI 轉換請求失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(common.ErrorPayload(err))
		return
	}

	c.JSON(http.StatusOK, conv)
}
